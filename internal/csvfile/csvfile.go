// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvfile renders a types.Table as delimited text: one header row
// of column names followed by one record per table row.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

const (
	// timestampLayout matches the common "date time" rendering used by
	// dataframe tools, trimming trailing zero fractions.
	timestampLayout = "2006-01-02 15:04:05.999999999"
	dateLayout      = "2006-01-02"
)

// Write writes t to w as CSV according to cfg.
func Write(w io.Writer, t *types.Table, cfg types.CSVConfig) error {
	cw := csv.NewWriter(w)
	if cfg.Delimiter != 0 {
		cw.Comma = cfg.Delimiter
	}
	cw.UseCRLF = cfg.UseCRLF

	if !cfg.NoHeader {
		if err := cw.Write(t.ColumnNames()); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	record := make([]string, t.NumColumns())
	for i, row := range t.Rows {
		if len(row) != len(record) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(record))
		}
		for j, cell := range row {
			record[j] = Format(cell, cfg)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes t as CSV to path. The content is written to a temporary
// file in the same directory and renamed into place, so path is either the
// previous content or the complete new content.
func WriteFile(path string, t *types.Table, cfg types.CSVConfig) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, t, cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// Format returns the text form of a single cell.
func Format(cell any, cfg types.CSVConfig) string {
	switch v := cell.(type) {
	case nil:
		return cfg.NullValue
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return formatTime(v)
	case []any:
		return formatList(v)
	}
	return fmt.Sprint(cell)
}

// formatTime renders midnight UTC values as plain dates.
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(timestampLayout)
}

// formatList encodes a repeated cell as a JSON array. Elements are encoded
// from their text form, except numbers and booleans which stay bare.
func formatList(list []any) string {
	elems := make([]any, len(list))
	for i, e := range list {
		switch v := e.(type) {
		case nil, bool, int64, uint64, float64, float32, string:
			elems[i] = v
		case time.Time:
			elems[i] = formatTime(v)
		default:
			elems[i] = fmt.Sprint(v)
		}
	}
	b, err := json.Marshal(elems)
	if err != nil {
		return fmt.Sprint(list)
	}
	return string(b)
}
