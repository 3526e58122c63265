// Package errors defines the sentinel and typed errors shared by the pipeline stages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrEmptyCorpus is returned when a stage needs at least one document.
	ErrEmptyCorpus = errors.New("corpus has no documents")

	// ErrDuplicateDocument is returned when the collection lists a name twice.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrMissingInput is returned when a required input file cannot be read.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidParams is returned for out-of-range PageRank parameters.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrMalformedLine is returned when a persisted line fails to parse.
	ErrMalformedLine = errors.New("malformed line")
)

// DuplicateDocumentError names the document listed more than once.
type DuplicateDocumentError struct {
	Name     string
	First    int
	Repeated int
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("document %q listed at positions %d and %d", e.Name, e.First, e.Repeated)
}

func (e *DuplicateDocumentError) Is(target error) bool {
	return target == ErrDuplicateDocument
}

// MissingInputError wraps the I/O failure for a required input file.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// MalformedLineError reports a persisted line that failed the strict parse.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}

// IsMissingInput reports whether err is caused by an unreadable input file.
func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingInput)
}
