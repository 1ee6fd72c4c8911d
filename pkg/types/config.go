// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

const (
	// DefaultRoot is the directory scanned when no root is given.
	DefaultRoot = "ebnerd_demo"

	// DefaultInputSuffix selects Parquet files by name.
	DefaultInputSuffix = ".parquet"

	// DefaultOutputSuffix replaces DefaultInputSuffix on output files.
	DefaultOutputSuffix = ".csv"
)

// CSVConfig holds settings for rendering a table as delimited text.
type CSVConfig struct {
	// Delimiter is the field separator (default ',').
	Delimiter rune `json:"delimiter" yaml:"delimiter"`

	// NullValue is written for null cells (default empty string).
	NullValue string `json:"null_value" yaml:"null_value"`

	// NoHeader suppresses the header row of column names.
	NoHeader bool `json:"no_header" yaml:"no_header"`

	// UseCRLF terminates records with \r\n instead of \n.
	UseCRLF bool `json:"use_crlf" yaml:"use_crlf"`
}

// Fingerprint identifies the settings that shape the CSV bytes. Two
// configs with the same fingerprint render a table identically.
func (c CSVConfig) Fingerprint() string {
	delim := c.Delimiter
	if delim == 0 {
		delim = ','
	}
	return fmt.Sprintf("delimiter=%q null=%q header=%t crlf=%t", delim, c.NullValue, !c.NoHeader, c.UseCRLF)
}

// ConversionConfig holds settings for a conversion run.
type ConversionConfig struct {
	CSV CSVConfig `json:"csv" yaml:"csv"`

	// Root is the directory scanned recursively for input files.
	Root string `json:"root" yaml:"root"`

	// InputSuffix selects input files by name (default ".parquet").
	InputSuffix string `json:"input_suffix" yaml:"input_suffix"`

	// OutputSuffix replaces InputSuffix on output files (default ".csv").
	OutputSuffix string `json:"output_suffix" yaml:"output_suffix"`

	// Exclude lists glob patterns; directories whose base name matches
	// one of them are not descended into.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// SkipExisting leaves files whose CSV output already exists untouched.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// KeepGoing continues past failed files instead of stopping the run.
	KeepGoing bool `json:"keep_going" yaml:"keep_going"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c ConversionConfig) WithDefaults() ConversionConfig {
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.InputSuffix == "" {
		c.InputSuffix = DefaultInputSuffix
	}
	if c.OutputSuffix == "" {
		c.OutputSuffix = DefaultOutputSuffix
	}
	if c.CSV.Delimiter == 0 {
		c.CSV.Delimiter = ','
	}
	return c
}

// ManifestConfig holds settings for the optional conversion ledger.
type ManifestConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// Enabled reports whether a ledger path is configured.
func (c ManifestConfig) Enabled() bool {
	return c.Path != ""
}

// LogConfig holds settings for structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format"`

	// SeqURL, when set, also ships log records to a Seq server.
	SeqURL string `json:"seq_url,omitempty" yaml:"seq_url,omitempty"`
}
