// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps an advisory SQLite record of exported drawings. The
// output directory stays authoritative: the harvester never consults the
// catalog to decide whether work is done, so losing or deleting the database
// costs nothing but history.
// Implements: prd003-catalog (R1-R3);
//
//	docs/ARCHITECTURE § Export Catalog.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/onshape-harvest/internal/harvest"
)

// Store manages the export catalog SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the catalog database at path, creating the schema
// and any missing parent directories (R1.1).
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			workspace_id TEXT NOT NULL,
			element_id TEXT NOT NULL,
			format TEXT NOT NULL,
			translation_id TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			exported_at TEXT NOT NULL,
			UNIQUE(document_id, workspace_id, element_id, format)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_document ON exports(document_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordExport upserts one export record (R1.3). Re-exporting the same
// drawing and format refreshes the existing row, so duplicate records from
// repeated runs are harmless.
func (s *Store) RecordExport(ctx context.Context, rec harvest.ExportRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO exports
		(document_id, workspace_id, element_id, format, translation_id, path, bytes, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, workspace_id, element_id, format) DO UPDATE SET
			translation_id = excluded.translation_id,
			path = excluded.path,
			bytes = excluded.bytes,
			exported_at = excluded.exported_at`,
		rec.DocumentID, rec.WorkspaceID, rec.ElementID, rec.Format, rec.TranslationID,
		rec.Path, rec.Bytes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording export of %s: %w", rec.Path, err)
	}
	return nil
}

// Entry is one catalog row.
type Entry struct {
	DocumentID    string    `json:"document_id" yaml:"document_id"`
	WorkspaceID   string    `json:"workspace_id" yaml:"workspace_id"`
	ElementID     string    `json:"element_id" yaml:"element_id"`
	Format        string    `json:"format" yaml:"format"`
	TranslationID string    `json:"translation_id,omitempty" yaml:"translation_id,omitempty"`
	Path          string    `json:"path" yaml:"path"`
	Bytes         int64     `json:"bytes" yaml:"bytes"`
	ExportedAt    time.Time `json:"exported_at" yaml:"exported_at"`
}

// List returns every catalog entry, oldest first (R2.1).
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		document_id, workspace_id, element_id, format, translation_id, path, bytes, exported_at
		FROM exports ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var exportedAt string
		if err := rows.Scan(&e.DocumentID, &e.WorkspaceID, &e.ElementID, &e.Format,
			&e.TranslationID, &e.Path, &e.Bytes, &exportedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if e.ExportedAt, err = time.Parse(time.RFC3339, exportedAt); err != nil {
			return nil, fmt.Errorf("parsing export time %q: %w", exportedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarizes the catalog (R2.2).
type Stats struct {
	Exports   int            `json:"exports" yaml:"exports"`
	Documents int            `json:"documents" yaml:"documents"`
	Bytes     int64          `json:"bytes" yaml:"bytes"`
	ByFormat  map[string]int `json:"by_format" yaml:"by_format"`
}

// Stats aggregates export, document, and byte counts, broken down by format.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByFormat: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `SELECT
		count(*), count(DISTINCT document_id), coalesce(sum(bytes), 0) FROM exports`).
		Scan(&stats.Exports, &stats.Documents, &stats.Bytes)
	if err != nil {
		return stats, fmt.Errorf("aggregating catalog: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT format, count(*) FROM exports GROUP BY format`)
	if err != nil {
		return stats, fmt.Errorf("aggregating formats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var format string
		var n int
		if err := rows.Scan(&format, &n); err != nil {
			return stats, fmt.Errorf("scanning format row: %w", err)
		}
		stats.ByFormat[format] = n
	}
	return stats, rows.Err()
}

// Missing returns the entries whose recorded file no longer exists on disk
// (R2.3). Useful after moving or pruning the output directory.
func (s *Store) Missing(ctx context.Context) ([]Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var missing []Entry
	for _, e := range entries {
		if _, err := os.Stat(e.Path); os.IsNotExist(err) {
			missing = append(missing, e)
		}
	}
	return missing, nil
}

// WriteYAML writes every entry to w as a YAML document (R3.1).
func (s *Store) WriteYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON writes every entry to w as indented JSON (R3.2).
func (s *Store) WriteJSON(ctx context.Context, w io.Writer) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
