// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.ManifestConfig{Path: filepath.Join(dir, "state", "manifest.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func record(dir, name, runID string) types.ConversionRecord {
	return types.ConversionRecord{
		Source:      filepath.Join(dir, name+".parquet"),
		Output:      filepath.Join(dir, name+".csv"),
		Size:        1024,
		ModTime:     time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC),
		Rows:        10,
		Columns:     3,
		ConvertedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		RunID:       runID,
		CSVConfig:   types.CSVConfig{}.Fingerprint(),
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(types.ManifestConfig{})
	require.Error(t, err)
}

func TestRecordAndLookup(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()

	_, found, err := s.Lookup(ctx, filepath.Join(dir, "a.parquet"))
	require.NoError(t, err)
	assert.False(t, found)

	rec := record(dir, "a", "run-1")
	require.NoError(t, s.Record(ctx, rec))

	got, found, err := s.Lookup(ctx, rec.Source)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Source, got.Source)
	assert.Equal(t, rec.Output, got.Output)
	assert.Equal(t, rec.Size, got.Size)
	assert.True(t, rec.ModTime.Equal(got.ModTime), "mod time %v != %v", got.ModTime, rec.ModTime)
	assert.Equal(t, 10, got.Rows)
	assert.Equal(t, 3, got.Columns)
	assert.Equal(t, "run-1", got.RunID)

	// Upsert replaces the previous entry.
	rec.Rows = 20
	rec.RunID = "run-2"
	require.NoError(t, s.Record(ctx, rec))
	got, _, err = s.Lookup(ctx, rec.Source)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Rows)
	assert.Equal(t, "run-2", got.RunID)
}

func TestLookup_RelativePath(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	t.Chdir(t.TempDir())

	rec := record(".", "rel", "run-1")
	require.NoError(t, s.Record(ctx, rec))

	abs, err := filepath.Abs("rel.parquet")
	require.NoError(t, err)
	got, found, err := s.Lookup(ctx, abs)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, abs, got.Source)
}

func TestEntries(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, record(filepath.Join(dir, "x"), "b", "run-1")))
	require.NoError(t, s.Record(ctx, record(filepath.Join(dir, "x"), "a", "run-1")))
	require.NoError(t, s.Record(ctx, record(filepath.Join(dir, "y"), "c", "run-2")))

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"x/a", "x/b", "y/c"}},
		{"prefix", Filter{Prefix: filepath.Join(dir, "x")}, []string{"x/a", "x/b"}},
		{"run", Filter{RunID: "run-2"}, []string{"y/c"}},
		{"limit", Filter{Limit: 1}, []string{"x/a"}},
		{"no match", Filter{RunID: "missing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.Entries(ctx, tt.filter)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				rel, err := filepath.Rel(dir, e.Source)
				require.NoError(t, err)
				got = append(got, filepath.ToSlash(rel[:len(rel)-len(".parquet")]))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, record(dir, "a", "run-1")))

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.ExportYAML(ctx, &buf, Filter{}))

		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, filepath.Join(dir, "a.csv"), got[0]["output"])
		assert.Equal(t, 10, got[0]["rows"])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.ExportJSON(ctx, &buf, Filter{}))

		var got []types.ConversionRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "run-1", got[0].RunID)
	})

	t.Run("json empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.ExportJSON(ctx, &buf, Filter{RunID: "none"}))
		assert.Equal(t, "[]\n", buf.String())
	})
}

func TestRecord_CSVConfig(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()

	rec := record(dir, "a", "run-1")
	rec.CSVConfig = types.CSVConfig{Delimiter: ';', NullValue: "NA"}.Fingerprint()
	require.NoError(t, s.Record(ctx, rec))

	got, found, err := s.Lookup(ctx, rec.Source)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.CSVConfig, got.CSVConfig)
}

func TestOpen_AddsCSVConfigColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE conversions (
		source TEXT PRIMARY KEY,
		output TEXT NOT NULL,
		size INTEGER NOT NULL,
		mod_time TEXT NOT NULL,
		rows INTEGER NOT NULL,
		columns INTEGER NOT NULL,
		converted_at TEXT NOT NULL,
		run_id TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO conversions VALUES ('/data/a.parquet', '/data/a.csv', 1, '2025-03-01T10:00:00Z', 2, 3, '2025-03-02T09:00:00Z', 'run-0')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(types.ManifestConfig{Path: path})
	require.NoError(t, err)

	got, found, err := s.Lookup(context.Background(), "/data/a.parquet")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, got.CSVConfig, "old entries carry no settings and never match")

	// Opening again must not try to add the column twice.
	require.NoError(t, s.Close())
	s2, err := Open(types.ManifestConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}
