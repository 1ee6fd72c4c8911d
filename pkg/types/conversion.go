// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one Parquet file.
type ConversionStatus string

const (
	ConversionDone      ConversionStatus = "converted"
	ConversionSkipped   ConversionStatus = "skipped"
	ConversionUnchanged ConversionStatus = "unchanged"
	ConversionFailed    ConversionStatus = "failed"
)

// ConversionRecord describes one completed conversion as kept in the
// manifest ledger.
type ConversionRecord struct {
	// Source is the path of the Parquet file.
	Source string `json:"source" yaml:"source"`

	// Output is the path of the CSV file written for Source.
	Output string `json:"output" yaml:"output"`

	// Size is the size of Source in bytes at conversion time.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is the modification time of Source at conversion time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// Rows is the number of data rows written.
	Rows int `json:"rows" yaml:"rows"`

	// Columns is the number of columns written.
	Columns int `json:"columns" yaml:"columns"`

	// ConvertedAt is when the CSV file was written.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`

	// CSVConfig is the CSVConfig.Fingerprint of the settings Output was
	// written with.
	CSVConfig string `json:"csv_config" yaml:"csv_config"`

	// RunID identifies the process run that performed the conversion.
	RunID string `json:"run_id" yaml:"run_id"`
}
