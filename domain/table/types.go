package table

import (
	"fmt"
	"strconv"
	"strings"

	"tablecast/domain/core"
)

// Value is a single cell. It holds string, float64, or nil (blank cell).
type Value any

// Row is one data row. Rows may be ragged relative to the header row;
// reading past the end of a row yields nil.
type Row []Value

// Table is an in-memory sheet: a name, one header row, and data rows.
// Header names are not required to be unique.
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// CellAt returns the value at col, or nil when the row is shorter
func (r Row) CellAt(col int) Value {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of header columns
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// IsEmpty reports whether the table has neither headers nor rows
func (t *Table) IsEmpty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// ColumnIndex returns the index of the first header exactly equal to name,
// or -1 when no header matches. Matching is case-sensitive; duplicate
// headers resolve to the leftmost occurrence.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// CellAt returns the value at (row, col), or nil when out of range
func (t *Table) CellAt(row, col int) Value {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row].CellAt(col)
}

// Column returns all values of the column at index col, nil-padded for
// short rows. An out-of-range index yields an all-nil column.
func (t *Table) Column(col int) []Value {
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.CellAt(col)
	}
	return out
}

// Clone returns a deep copy; mutating the copy never touches the original
func (t *Table) Clone() Table {
	dup := Table{
		Name:    t.Name,
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		dup.Rows[i] = append(Row(nil), row...)
	}
	return dup
}

// Fingerprint identifies the table content for re-upload detection and logging
func (t *Table) Fingerprint() core.Fingerprint {
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte(0x1e)
	for _, h := range t.Headers {
		b.WriteString(h)
		b.WriteByte(0x1f)
	}
	b.WriteByte(0x1e)
	for _, row := range t.Rows {
		for _, v := range row {
			b.WriteString(ValueString(v))
			b.WriteByte(0x1f)
		}
		b.WriteByte(0x1e)
	}
	return core.NewFingerprint([]byte(b.String()))
}

// ValueString renders a cell for previews, prompts, and fingerprints.
// nil renders as the empty string; numbers render without a trailing zero tail.
func ValueString(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
