// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

// ExportYAML writes the ledger entries matching f to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, f Filter) error {
	entries, err := s.Entries(ctx, f)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the ledger entries matching f to w as an indented
// JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, f Filter) error {
	entries, err := s.Entries(ctx, f)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []types.ConversionRecord{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
