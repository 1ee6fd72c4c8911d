// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads Parquet files fully into a types.Table.
// Every leaf column of the file schema becomes one table column, named by
// its dotted path, in column-index order.
package table

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

// ErrNotParquet is returned when a file cannot be opened as Parquet.
var ErrNotParquet = errors.New("not a parquet file")

// readBatch is the number of rows pulled from a row group per call.
const readBatch = 512

// leaf holds what the decoder needs to know about one leaf column.
type leaf struct {
	node     parquet.Node
	repeated bool
	maxDef   int
	// listDef is the definition level of an empty list: values below it
	// mean the list itself is null, values between it and maxDef are null
	// elements.
	listDef int
}

// ReadFile opens the Parquet file at path and reads all of its rows.
func ReadFile(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	t, err := Read(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// Read decodes a Parquet file of the given size from r.
func Read(r io.ReaderAt, size int64) (*types.Table, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotParquet, err)
	}

	t, leaves, err := layout(pf.Schema())
	if err != nil {
		return nil, err
	}

	t.Rows = make([][]any, 0, pf.NumRows())
	for i, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, leaves, t); err != nil {
			return nil, fmt.Errorf("row group %d: %w", i, err)
		}
	}
	return t, nil
}

// layout builds the table columns and per-leaf decoding info from schema.
func layout(schema *parquet.Schema) (*types.Table, []leaf, error) {
	paths := schema.Columns()
	t := &types.Table{Columns: make([]types.Column, len(paths))}
	leaves := make([]leaf, len(paths))

	for _, path := range paths {
		lc, ok := schema.Lookup(path...)
		if !ok {
			return nil, nil, fmt.Errorf("column %s not found in schema", strings.Join(path, "."))
		}
		if lc.ColumnIndex < 0 || lc.ColumnIndex >= len(paths) {
			return nil, nil, fmt.Errorf("column %s has index %d out of range", strings.Join(path, "."), lc.ColumnIndex)
		}
		repeated := lc.MaxRepetitionLevel > 0
		leaves[lc.ColumnIndex] = leaf{
			node:     lc.Node,
			repeated: repeated,
			maxDef:   lc.MaxDefinitionLevel,
			listDef:  listDefinitionLevel(schema, path),
		}
		t.Columns[lc.ColumnIndex] = types.Column{
			Name:     strings.Join(path, "."),
			Type:     describe(lc.Node),
			Repeated: repeated,
		}
	}
	return t, leaves, nil
}

// listDefinitionLevel counts the optional nodes on path above its first
// repeated node.
func listDefinitionLevel(root parquet.Node, path []string) int {
	def := 0
	node := root
	for _, name := range path {
		child := fieldByName(node, name)
		if child == nil || child.Repeated() {
			return def
		}
		if child.Optional() {
			def++
		}
		node = child
	}
	return def
}

func fieldByName(node parquet.Node, name string) parquet.Field {
	for _, f := range node.Fields() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func readRowGroup(rg parquet.RowGroup, leaves []leaf, t *types.Table) error {
	rows := rg.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, readBatch)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			t.Rows = append(t.Rows, decodeRow(row, leaves))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// decodeRow spreads the values of a Parquet row over the leaf columns.
// Repeated leaves collect their elements into a []any, keeping null
// elements as nil. A list whose own definition level is not reached
// decodes as nil; one defined without elements decodes as an empty slice.
func decodeRow(row parquet.Row, leaves []leaf) []any {
	cells := make([]any, len(leaves))
	for i, l := range leaves {
		if l.repeated {
			cells[i] = []any{}
		}
	}

	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leaves) {
			continue
		}
		l := leaves[col]
		if !l.repeated {
			cells[col] = Cell(l.node, v)
			continue
		}
		def := v.DefinitionLevel()
		switch {
		case def < l.listDef:
			cells[col] = nil
		case def == l.listDef:
			// empty list
		case def < l.maxDef || v.IsNull():
			list, _ := cells[col].([]any)
			cells[col] = append(list, nil)
		default:
			list, _ := cells[col].([]any)
			cells[col] = append(list, Cell(l.node, v))
		}
	}
	return cells
}
