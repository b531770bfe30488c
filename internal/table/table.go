// Package table holds tabular extracts of disclosure PDFs and the extractors
// that produce them.
package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Table errors.
var (
	ErrEmptyTable    = errors.New("table has no header row")
	ErrUnknownColumn = errors.New("unknown column")
)

// Extractor produces a Table from a source document.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Table, error)
}

// Table is a header plus string rows. An empty cell means the value is
// missing; short rows are treated as padded with empty cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a table from a header and rows, trimming header whitespace.
func New(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}

	return &Table{Columns: cols, Rows: rows}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// Has reports whether the table has column name.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Missing returns the subset of names that are not columns of t.
func (t *Table) Missing(names ...string) []string {
	var missing []string

	for _, n := range names {
		if n != "" && !t.Has(n) {
			missing = append(missing, n)
		}
	}

	return missing
}

// Cell returns the trimmed value at row, column name. Unknown columns and
// out-of-range cells read as empty.
func (t *Table) Cell(row int, name string) string {
	idx := t.Index(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}

	return strings.TrimSpace(t.Rows[row][idx])
}

// Set writes value at row, column name, growing the row if needed.
func (t *Table) Set(row int, name, value string) error {
	idx := t.Index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}

	for len(t.Rows[row]) <= idx {
		t.Rows[row] = append(t.Rows[row], "")
	}

	t.Rows[row][idx] = value

	return nil
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Columns: t.Columns}

	for i, r := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, r)
		}
	}

	return out
}
