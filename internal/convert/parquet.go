// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"github.com/pdiddy/parquet2csv/internal/csvfile"
	"github.com/pdiddy/parquet2csv/internal/table"
	"github.com/pdiddy/parquet2csv/pkg/types"
)

// ParquetConverter reads a Parquet file fully into memory and writes it as
// CSV.
type ParquetConverter struct {
	CSV types.CSVConfig
}

// NewParquetConverter returns a converter that writes CSV using cfg.
func NewParquetConverter(cfg types.CSVConfig) *ParquetConverter {
	return &ParquetConverter{CSV: cfg}
}

// Convert reads the Parquet file at srcPath and writes its rows to dstPath.
func (p *ParquetConverter) Convert(srcPath, dstPath string) (int, int, error) {
	t, err := table.ReadFile(srcPath)
	if err != nil {
		return 0, 0, err
	}
	if err := csvfile.WriteFile(dstPath, t, p.CSV); err != nil {
		return 0, 0, err
	}
	return t.NumRows(), t.NumColumns(), nil
}
