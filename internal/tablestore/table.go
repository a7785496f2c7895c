package tablestore

import (
	"time"
)

// Kind identifies the storage type of a column or cell
type Kind int

const (
	// KindText is a textual/categorical column
	KindText Kind = iota
	// KindNumber is a numeric column
	KindNumber
	// KindTime is a date/time column (produced by cleaning, never by loading)
	KindTime
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is a single cell. A null cell remembers its column kind so cleaned
// tables stay rectangular and typed.
type Value struct {
	Kind   Kind
	Null   bool
	Text   string
	Number float64
	Time   time.Time
}

// TextValue creates a non-null text cell
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// NumberValue creates a non-null numeric cell
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// TimeValue creates a non-null time cell
func TimeValue(t time.Time) Value {
	return Value{Kind: KindTime, Time: t}
}

// NullValue creates a null cell of the given kind
func NullValue(k Kind) Value {
	return Value{Kind: k, Null: true}
}

// Equal reports whether two cells are exactly equal. Two nulls of the same
// kind are equal; this is what exact-duplicate row removal relies on.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind || v.Null != other.Null {
		return false
	}
	if v.Null {
		return true
	}
	switch v.Kind {
	case KindText:
		return v.Text == other.Text
	case KindNumber:
		return v.Number == other.Number
	case KindTime:
		return v.Time.Equal(other.Time)
	default:
		return false
	}
}

// Column describes one column of a table
type Column struct {
	Name string
	Kind Kind
}

// Row is one record of a table; len(Row) always equals len(Table.Columns)
type Row []Value

// Table is a named, rectangular, typed table. Tables are treated as
// immutable snapshots once built: transforms return new tables.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{
		Name:    t.Name,
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		out.Rows[i] = make(Row, len(row))
		copy(out.Rows[i], row)
	}
	return out
}

// RowEqual reports whether two rows are exactly equal across all columns
func RowEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
