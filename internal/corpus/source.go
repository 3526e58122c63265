package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/hyperjump/pagesearch/internal/errors"
)

// BodySource supplies the text of a document by name.
type BodySource interface {
	Body(ctx context.Context, name string) (string, error)
}

// DirSource reads bodies from Dir/<name><Suffix>.
type DirSource struct {
	Dir    string
	Suffix string
}

// NewDirSource creates a DirSource.
func NewDirSource(dir, suffix string) *DirSource {
	return &DirSource{Dir: dir, Suffix: suffix}
}

// Path returns the file that holds the named document.
func (d *DirSource) Path(name string) string {
	return filepath.Join(d.Dir, name+d.Suffix)
}

// Body reads the named document. An unreadable file is a MissingInputError.
func (d *DirSource) Body(ctx context.Context, name string) (string, error) {
	path := d.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &apperrors.MissingInputError{Path: path, Err: err}
	}
	return string(data), nil
}

// MapSource serves bodies from memory.
type MapSource map[string]string

// Body returns the stored body, or a MissingInputError for unknown names.
func (m MapSource) Body(ctx context.Context, name string) (string, error) {
	body, ok := m[name]
	if !ok {
		return "", &apperrors.MissingInputError{Path: name, Err: os.ErrNotExist}
	}
	return body, nil
}

// Preload reads every document of store from src once, so later stages do not
// touch the filesystem again.
func Preload(ctx context.Context, store *Store, src BodySource) (MapSource, error) {
	bodies := make(MapSource, store.Len())
	for _, name := range store.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := src.Body(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("preload: %w", err)
		}
		bodies[name] = body
	}
	return bodies, nil
}

// ReadCollection returns the whitespace-separated document names listed in path,
// in file order.
func ReadCollection(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.MissingInputError{Path: path, Err: err}
	}
	return strings.Fields(string(data)), nil
}

// Open reads the collection file and registers its documents.
func Open(collectionPath string) (*Store, error) {
	names, err := ReadCollection(collectionPath)
	if err != nil {
		return nil, err
	}
	return LoadDocuments(names)
}
