package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/pagesearch/internal/models"
)

// SQLiteStorage implements Snapshot using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Snapshot = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		out_degree INTEGER NOT NULL DEFAULT 0,
		pagerank REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_pagerank ON documents(pagerank DESC, name);

	CREATE TABLE IF NOT EXISTS postings (
		term TEXT NOT NULL,
		document TEXT NOT NULL,
		PRIMARY KEY (term, document)
	);

	CREATE TABLE IF NOT EXISTS links (
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		PRIMARY KEY (source, target)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		documents INTEGER NOT NULL DEFAULT 0,
		terms INTEGER NOT NULL DEFAULT 0,
		postings INTEGER NOT NULL DEFAULT 0,
		edges INTEGER NOT NULL DEFAULT 0,
		iterations INTEGER NOT NULL DEFAULT 0,
		diff REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_stage_finished ON runs(stage, finished_at);
	`
	_, err := db.Exec(schema)
	return err
}

// replace clears table and refills it through fill in one transaction.
func (s *SQLiteStorage) replace(ctx context.Context, table, insert string, fill func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := fill(stmt); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return tx.Commit()
}

// ReplaceDocuments stores docs as the current document table.
func (s *SQLiteStorage) ReplaceDocuments(ctx context.Context, docs []models.Document) error {
	return s.replace(ctx, "documents",
		`INSERT INTO documents (name, position, out_degree, pagerank) VALUES (?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, d := range docs {
				if _, err := stmt.ExecContext(ctx, d.Name, d.Index, d.OutDegree, d.PageRank); err != nil {
					return err
				}
			}
			return nil
		})
}

// ReplacePostings stores entries as the current inverted index.
func (s *SQLiteStorage) ReplacePostings(ctx context.Context, entries []models.TermEntry) error {
	return s.replace(ctx, "postings",
		`INSERT INTO postings (term, document) VALUES (?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, e := range entries {
				for _, doc := range e.Documents {
					if _, err := stmt.ExecContext(ctx, e.Term, doc); err != nil {
						return err
					}
				}
			}
			return nil
		})
}

// ReplaceLinks stores edges, resolving their indexes against docs.
func (s *SQLiteStorage) ReplaceLinks(ctx context.Context, docs []models.Document, edges []models.Link) error {
	return s.replace(ctx, "links",
		`INSERT INTO links (source, target) VALUES (?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, e := range edges {
				if e.From < 0 || e.From >= len(docs) || e.To < 0 || e.To >= len(docs) {
					return fmt.Errorf("edge %d->%d outside %d documents", e.From, e.To, len(docs))
				}
				if _, err := stmt.ExecContext(ctx, docs[e.From].Name, docs[e.To].Name); err != nil {
					return err
				}
			}
			return nil
		})
}

// RecordRun inserts run, assigning a new ID when it has none.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, stage, started_at, finished_at, documents, terms, postings, edges, iterations, diff)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Stage, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Documents, run.Terms, run.Postings, run.Edges, run.Iterations, run.Diff,
	)
	return err
}

// LatestRun returns the most recently finished run of stage, or ErrNoRun.
func (s *SQLiteStorage) LatestRun(ctx context.Context, stage string) (*models.Run, error) {
	var run models.Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, stage, started_at, finished_at, documents, terms, postings, edges, iterations, diff
		 FROM runs WHERE stage = ? ORDER BY finished_at DESC, rowid DESC LIMIT 1`, stage,
	).Scan(&run.ID, &run.Stage, &run.StartedAt, &run.FinishedAt,
		&run.Documents, &run.Terms, &run.Postings, &run.Edges, &run.Iterations, &run.Diff)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoRun, stage)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Documents returns the stored documents ordered by score descending, name ascending.
func (s *SQLiteStorage) Documents(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, position, out_degree, pagerank FROM documents ORDER BY pagerank DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.Name, &d.Index, &d.OutDegree, &d.PageRank); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) count(ctx context.Context, query string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// CountDocuments returns the number of stored documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM documents`)
}

// CountTerms returns the number of distinct indexed terms.
func (s *SQLiteStorage) CountTerms(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT term) FROM postings`)
}

// CountPostings returns the number of (term, document) pairs.
func (s *SQLiteStorage) CountPostings(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM postings`)
}

// CountLinks returns the number of stored edges.
func (s *SQLiteStorage) CountLinks(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM links`)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
