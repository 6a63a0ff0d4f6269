// Package store provides a SQLite-backed tracker for scanned transcripts, so
// the background refresh only reparses files that actually changed. The store
// is an optimization: any failure here degrades to a full rescan.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/clstat/internal/scan"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store tracks per-file scan results between refreshes.
type Store struct {
	db *sql.DB
}

// Open opens or creates the tracker database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the tracker database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Lookup returns the tracked info for a file, reporting whether it is known.
func (s *Store) Lookup(path string) (FileInfo, bool, error) {
	var fi FileInfo
	err := s.db.QueryRow(
		"SELECT mtime_ns, size_bytes FROM file_tracker WHERE file_path = ?", path,
	).Scan(&fi.MtimeNs, &fi.SizeBytes)
	if err == sql.ErrNoRows {
		return fi, false, nil
	}
	if err != nil {
		return fi, false, err
	}
	return fi, true, nil
}

// Models returns the stored per-model totals for a file.
func (s *Store) Models(path string) (map[string]scan.Totals, error) {
	rows, err := s.db.Query(
		"SELECT model, input_tokens, output_tokens FROM file_models WHERE file_path = ?", path,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]scan.Totals)
	for rows.Next() {
		var model string
		var t scan.Totals
		if err := rows.Scan(&model, &t.In, &t.Out); err != nil {
			return nil, err
		}
		totals[model] = t
	}
	return totals, rows.Err()
}

// Save stores a file's tracking info and per-model totals, replacing any
// previous entry for the same path.
func (s *Store) Save(path string, fi FileInfo, totals map[string]scan.Totals) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes) VALUES (?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes`,
		path, fi.MtimeNs, fi.SizeBytes,
	); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM file_models WHERE file_path = ?", path); err != nil {
		return err
	}
	for model, t := range totals {
		if _, err := tx.Exec(
			"INSERT INTO file_models (file_path, model, input_tokens, output_tokens) VALUES (?, ?, ?, ?)",
			path, model, t.In, t.Out,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
