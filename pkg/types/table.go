// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Column describes one leaf column of a table read from a Parquet file.
type Column struct {
	// Name is the dotted path of the leaf column (e.g. "address.city").
	// Top-level columns have no dot.
	Name string `json:"name" yaml:"name"`

	// Type is a readable description of the physical and logical type,
	// for example "INT64" or "BYTE_ARRAY(STRING)".
	Type string `json:"type" yaml:"type"`

	// Repeated reports whether the column holds a list per row.
	Repeated bool `json:"repeated,omitempty" yaml:"repeated,omitempty"`
}

// Table is a transient in-memory rendition of a columnar file: named
// columns and ordered rows. Each row has exactly one cell per column.
//
// Cells hold nil, bool, int64, uint64, float32, float64, string, time.Time, or
// []any for repeated columns.
type Table struct {
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns in the table.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
