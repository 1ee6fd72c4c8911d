// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

func sampleTable() *types.Table {
	return &types.Table{
		Columns: []types.Column{{Name: "id"}, {Name: "name"}, {Name: "score"}, {Name: "tags"}},
		Rows: [][]any{
			{int64(1), "ada", 1.5, []any{"x", "y"}},
			{int64(2), "b,ob", nil, []any{}},
			{int64(3), "say \"hi\"", -0.25, []any{int64(1), true}},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), types.CSVConfig{}))

	want := "id,name,score,tags\n" +
		"1,ada,1.5,\"[\"\"x\"\",\"\"y\"\"]\"\n" +
		"2,\"b,ob\",,[]\n" +
		"3,\"say \"\"hi\"\"\",-0.25,\"[1,true]\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_Options(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.CSVConfig
		want string
	}{
		{
			name: "semicolon delimiter",
			cfg:  types.CSVConfig{Delimiter: ';'},
			want: "a;b\n1;\n",
		},
		{
			name: "null value",
			cfg:  types.CSVConfig{NullValue: "NULL"},
			want: "a,b\n1,NULL\n",
		},
		{
			name: "no header",
			cfg:  types.CSVConfig{NoHeader: true},
			want: "1,\n",
		},
		{
			name: "crlf",
			cfg:  types.CSVConfig{UseCRLF: true},
			want: "a,b\r\n1,\r\n",
		},
	}

	tbl := &types.Table{
		Columns: []types.Column{{Name: "a"}, {Name: "b"}},
		Rows:    [][]any{{int64(1), nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tbl, tt.cfg))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWrite_RaggedRow(t *testing.T) {
	tbl := &types.Table{
		Columns: []types.Column{{Name: "a"}, {Name: "b"}},
		Rows:    [][]any{{int64(1)}},
	}
	var buf bytes.Buffer
	err := Write(&buf, tbl, types.CSVConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 has 1 cells, want 2")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bool", false, "false"},
		{"int64", int64(-42), "-42"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float32", float32(0.1), "0.1"},
		{"float64", 0.1, "0.1"},
		{"float64 large", 1e21, "1e+21"},
		{"date", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "2024-02-29"},
		{"timestamp", time.Date(2024, 2, 29, 13, 4, 5, 0, time.UTC), "2024-02-29 13:04:05"},
		{"timestamp fraction", time.Date(2024, 2, 29, 13, 4, 5, 120_000_000, time.UTC), "2024-02-29 13:04:05.12"},
		{"list of strings", []any{"a", "b"}, `["a","b"]`},
		{"list with null", []any{"a", nil}, `["a",null]`},
		{"list of times", []any{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, `["2024-01-01"]`},
		{"empty list", []any{}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.cell, types.CSVConfig{}))
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, WriteFile(path, sampleTable(), types.CSVConfig{}))

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte("id,name,score,tags\n")))

	require.NoError(t, WriteFile(path, sampleTable(), types.CSVConfig{}))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second, "rewriting the same table should be byte-identical")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestWriteFile_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	bad := &types.Table{
		Columns: []types.Column{{Name: "a"}},
		Rows:    [][]any{{int64(1), int64(2)}},
	}
	require.Error(t, WriteFile(path, bad, types.CSVConfig{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.csv")
	err := WriteFile(path, sampleTable(), types.CSVConfig{})
	require.Error(t, err)
}
