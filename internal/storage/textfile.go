package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/hyperjump/pagesearch/internal/errors"
	"github.com/hyperjump/pagesearch/internal/models"
)

// writeAtomic streams write into a temp file next to path and renames it into
// place, so readers never see a half-written output.
func writeAtomic(path string, write func(w *bufio.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &apperrors.MissingInputError{Path: path, Err: err}
	}
	return f, nil
}

// WriteInvertedIndex writes one "<term> <doc1> <doc2> ..." line per entry, in
// the order given.
func WriteInvertedIndex(path string, entries []models.TermEntry) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		return EncodeInvertedIndex(w, entries)
	})
}

// EncodeInvertedIndex writes the inverted index lines to w.
func EncodeInvertedIndex(w io.Writer, entries []models.TermEntry) error {
	for _, e := range entries {
		if _, err := io.WriteString(w, e.Term); err != nil {
			return err
		}
		for _, doc := range e.Documents {
			if _, err := fmt.Fprintf(w, " %s", doc); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// ReadInvertedIndex loads an index written by WriteInvertedIndex. Blank lines
// and terms without documents are ignored.
func ReadInvertedIndex(path string) ([]models.TermEntry, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []models.TermEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, models.TermEntry{Term: fields[0], Documents: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entries, nil
}

// WritePageRankList writes one "<name>, <outDegree>, <score>" line per
// document, score with seven decimals, in the order given.
func WritePageRankList(path string, docs []models.Document) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		return EncodePageRankList(w, docs)
	})
}

// EncodePageRankList writes the PageRank lines to w.
func EncodePageRankList(w io.Writer, docs []models.Document) error {
	for _, d := range docs {
		if _, err := fmt.Fprintf(w, "%s, %d, %.7f\n", d.Name, d.OutDegree, d.PageRank); err != nil {
			return err
		}
	}
	return nil
}

// PageRankList is the parsed content of a PageRank list file.
type PageRankList struct {
	// Documents holds the well-formed lines in file order. Index is the line's
	// position among them.
	Documents []models.Document
	// Malformed holds every non-blank line that failed to parse.
	Malformed []*apperrors.MalformedLineError
}

// ReadPageRankList loads a list written by WritePageRankList. Lines that do not
// split into exactly a name, an integer and a number are collected in
// Malformed and otherwise skipped.
func ReadPageRankList(path string) (*PageRankList, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list := &PageRankList{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc, reason := parsePageRankLine(line)
		if reason != "" {
			list.Malformed = append(list.Malformed, &apperrors.MalformedLineError{Line: lineNo, Text: line, Reason: reason})
			continue
		}
		doc.Index = len(list.Documents)
		list.Documents = append(list.Documents, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return list, nil
}

func parsePageRankLine(line string) (models.Document, string) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return models.Document{}, fmt.Sprintf("want 3 comma-separated fields, got %d", len(parts))
	}
	name := strings.TrimSpace(parts[0])
	if name == "" || strings.ContainsAny(name, " \t") {
		return models.Document{}, "invalid document name"
	}
	outDegree, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.Document{}, "invalid out-degree"
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return models.Document{}, "invalid score"
	}
	return models.Document{Name: name, OutDegree: outDegree, PageRank: score}, ""
}
