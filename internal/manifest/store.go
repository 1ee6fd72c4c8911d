// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest keeps an optional SQLite ledger of completed conversions.
// The ledger lets a run skip Parquet files that have not changed since their
// CSV output was last written, and backs the history command.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.ManifestConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, errors.New("manifest path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", cfg.Path, err)
	}

	s := &Store{db: db, path: cfg.Path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			source TEXT PRIMARY KEY,
			output TEXT NOT NULL,
			size INTEGER NOT NULL,
			mod_time TEXT NOT NULL,
			rows INTEGER NOT NULL,
			columns INTEGER NOT NULL,
			converted_at TEXT NOT NULL,
			run_id TEXT NOT NULL,
			csv_config TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run_id ON conversions(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return s.addColumn("csv_config", `TEXT NOT NULL DEFAULT ''`)
}

// addColumn adds a column to ledgers created before it existed.
func (s *Store) addColumn(name, decl string) error {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('conversions') WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting conversions table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.db.Exec(`ALTER TABLE conversions ADD COLUMN ` + name + ` ` + decl); err != nil {
		return fmt.Errorf("adding column %s: %w", name, err)
	}
	return nil
}

// Lookup returns the last recorded conversion of source. The boolean is
// false when source has never been recorded.
func (s *Store) Lookup(ctx context.Context, source string) (types.ConversionRecord, bool, error) {
	key, err := normalize(source)
	if err != nil {
		return types.ConversionRecord{}, false, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT source, output, size, mod_time, rows, columns, converted_at, run_id, csv_config
		 FROM conversions WHERE source = ?`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ConversionRecord{}, false, nil
	}
	if err != nil {
		return types.ConversionRecord{}, false, fmt.Errorf("looking up %s: %w", source, err)
	}
	return rec, true, nil
}

// Record inserts or replaces the ledger entry for rec.Source.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	source, err := normalize(rec.Source)
	if err != nil {
		return err
	}
	output, err := normalize(rec.Output)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (source, output, size, mod_time, rows, columns, converted_at, run_id, csv_config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
			output=excluded.output, size=excluded.size, mod_time=excluded.mod_time,
			rows=excluded.rows, columns=excluded.columns,
			converted_at=excluded.converted_at, run_id=excluded.run_id,
			csv_config=excluded.csv_config`,
		source, output, rec.Size,
		rec.ModTime.UTC().Format(time.RFC3339Nano),
		rec.Rows, rec.Columns,
		rec.ConvertedAt.UTC().Format(time.RFC3339Nano),
		rec.RunID, rec.CSVConfig,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", rec.Source, err)
	}
	return nil
}

// Filter narrows the entries returned by Entries.
type Filter struct {
	// Prefix keeps entries whose source path starts with Prefix.
	Prefix string

	// RunID keeps entries written by one run.
	RunID string

	// Limit caps the number of entries. Zero means no limit.
	Limit int
}

// Entries returns recorded conversions ordered by source path.
func (s *Store) Entries(ctx context.Context, f Filter) ([]types.ConversionRecord, error) {
	var (
		qb    strings.Builder
		args  []any
		where []string
	)
	qb.WriteString(`SELECT source, output, size, mod_time, rows, columns, converted_at, run_id, csv_config FROM conversions`)

	if f.Prefix != "" {
		prefix, err := normalize(f.Prefix)
		if err != nil {
			return nil, err
		}
		where = append(where, `instr(source, ?) = 1`)
		args = append(args, prefix)
	}
	if f.RunID != "" {
		where = append(where, `run_id = ?`)
		args = append(args, f.RunID)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY source")
	if f.Limit > 0 {
		qb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.ConversionRecord, error) {
	var (
		rec                  types.ConversionRecord
		modTime, convertedAt string
	)
	if err := sc.Scan(&rec.Source, &rec.Output, &rec.Size, &modTime,
		&rec.Rows, &rec.Columns, &convertedAt, &rec.RunID, &rec.CSVConfig); err != nil {
		return rec, err
	}
	var err error
	if rec.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
		return rec, fmt.Errorf("parsing mod_time: %w", err)
	}
	if rec.ConvertedAt, err = time.Parse(time.RFC3339Nano, convertedAt); err != nil {
		return rec, fmt.Errorf("parsing converted_at: %w", err)
	}
	return rec, nil
}

// normalize makes ledger keys independent of the working directory.
func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
