package dataset

import (
	"fmt"
	"math"
)

// Table is an in-memory observation table: an ordered sequence of rows with
// named numeric columns. Missing or non-numeric values are stored as NaN.
// Row order is fixed at load time and never reshuffled; every downstream
// consumer indexes rows by position.
type Table struct {
	columns []string
	data    map[string][]float64
	rows    int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		data: make(map[string][]float64),
	}
}

// AddColumn appends a named column. Every column must have the same length;
// the first column added fixes the row count.
func (t *Table) AddColumn(name string, values []float64) error {
	if _, exists := t.data[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(t.columns) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.columns = append(t.columns, name)
	t.data[name] = values
	t.rows = len(values)
	return nil
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the values of a named column, aligned to the row index.
// The returned slice is the table's backing storage and must not be mutated.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.data[name]
	return v, ok
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Value returns the cell at (row, column), or NaN if the column is absent.
func (t *Table) Value(row int, column string) float64 {
	v, ok := t.data[column]
	if !ok || row < 0 || row >= len(v) {
		return math.NaN()
	}
	return v[row]
}

// Row assembles the values of the given columns for one row, in order.
// Absent columns yield NaN.
func (t *Table) Row(row int, columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = t.Value(row, c)
	}
	return out
}

// IsMissing reports whether a cell holds a missing (NaN) value.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
