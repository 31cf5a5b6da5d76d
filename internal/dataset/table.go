package dataset

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Row maps column name to value. Values are int64, float64, string, bool or nil.
type Row map[string]any

// Table is an ordered sequence of rows sharing a fixed column header.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) HasColumn(col string) bool {
	return t != nil && slices.Contains(t.Columns, col)
}

// EnsureColumn appends col to the header if missing.
func (t *Table) EnsureColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// DropColumn removes col from the header and from every row.
func (t *Table) DropColumn(col string) {
	if i := slices.Index(t.Columns, col); i >= 0 {
		t.Columns = slices.Delete(t.Columns, i, i+1)
	}
	for _, r := range t.Rows {
		delete(r, col)
	}
}

// AppendRow adds a row, filling header columns the row does not mention with nil.
func (t *Table) AppendRow(r Row) {
	for _, c := range t.Columns {
		if _, ok := r[c]; !ok {
			r[c] = nil
		}
	}
	t.Rows = append(t.Rows, r)
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// IDs returns the integer ids of the table, skipping rows whose id is not an integer.
func (t *Table) IDs() []int64 {
	return t.IntColumn("id")
}

// IntColumn returns every non-null value of col that converts to an integer.
func (t *Table) IntColumn(col string) []int64 {
	out := make([]int64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if v, ok := AsInt(r[col]); ok {
			out = append(out, v)
		}
	}
	return out
}

// FindByID returns the first row whose id equals id.
func (t *Table) FindByID(id int64) (Row, bool) {
	if t == nil {
		return nil, false
	}
	for _, r := range t.Rows {
		if v, ok := AsInt(r["id"]); ok && v == id {
			return r, true
		}
	}
	return nil, false
}

// LookupByID returns column col of the row identified by id, or nil.
func (t *Table) LookupByID(id any, col string) any {
	iv, ok := AsInt(id)
	if !ok {
		return nil
	}
	r, ok := t.FindByID(iv)
	if !ok {
		return nil
	}
	return r[col]
}

// Clone deep-copies the header and rows.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: slices.Clone(t.Columns), Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Records returns rows in header order with nil normalised to "".
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, r := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			v := r[c]
			if v == nil {
				v = ""
			}
			rec[c] = v
		}
		out[i] = rec
	}
	return out
}

// AsInt converts integer-like values. Floats qualify only when integral.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.Trunc(n) == n && !math.IsInf(n, 0) {
			return int64(n), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// AsFloat converts numeric values and numeric strings.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// AsString renders a value for prompts and exports; nil becomes "".
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
