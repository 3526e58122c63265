// Package cli provides output helpers for the pagesearch command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperjump/pagesearch/internal/models"
	"github.com/hyperjump/pagesearch/internal/pipeline"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is plain text (default). Search results are one name per line.
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an output format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	for _, r := range response.Results {
		if _, err := fmt.Fprintln(w, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatus writes a status report to w in the given format.
func WriteStatus(w io.Writer, st *pipeline.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTPUT\tSIZE")
	for _, u := range st.Outputs {
		size := FormatBytes(u.Bytes)
		if !u.Exists {
			size = "missing"
		}
		fmt.Fprintf(tw, "%s\t%s\n", u.Path, size)
	}
	fmt.Fprintf(tw, "total\t%s\n", FormatBytes(st.TotalBytes))
	if err := tw.Flush(); err != nil {
		return err
	}

	if st.Snapshot == nil {
		return nil
	}
	s := st.Snapshot
	fmt.Fprintf(w, "\nSnapshot: %d documents, %d terms, %d postings, %d links\n",
		s.Documents, s.Terms, s.Postings, s.Links)
	if len(s.Top) > 0 {
		fmt.Fprintln(w, "Top documents:")
		for _, d := range s.Top {
			fmt.Fprintf(w, "  %-12s %.7f  out-degree %d\n", d.Name, d.PageRank, d.OutDegree)
		}
	}
	for _, run := range s.Runs {
		fmt.Fprintf(w, "Last %s run %s at %s (%s)\n",
			run.Stage, run.ID, run.FinishedAt.Local().Format("2006-01-02 15:04:05"), run.Duration())
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
