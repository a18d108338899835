package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a parsed field value. The set of implementations is closed:
// Scalar, Columns, List, and ColumnList.
type Value interface {
	isValue()
}

// Scalar is a single field value.
type Scalar string

// Column is one segment of a " - " separated value. Positional columns have
// an empty Name; named columns come from the inline "name: value" syntax.
type Column struct {
	Name  string
	Value string
}

// Columns holds the segments of one value entry, in order.
type Columns []Column

// List holds the entries of a multi-value field. Each element is a Scalar or
// Columns.
type List []Value

// Cell is one named column of a multi-column row.
type Cell struct {
	Column string
	Value  Value
}

// Row maps column names to values for one entry of a multi-column field.
// Cells keep the order in which their columns first appeared.
type Row []Cell

// ColumnList holds the rows of a multi-column field.
type ColumnList []Row

func (Scalar) isValue()     {}
func (Columns) isValue()    {}
func (List) isValue()       {}
func (ColumnList) isValue() {}

// Positional returns the values of the unnamed columns, in order.
func (c Columns) Positional() []string {
	var out []string
	for _, col := range c {
		if col.Name == "" {
			out = append(out, col.Value)
		}
	}
	return out
}

// Named returns the value of the named column.
func (c Columns) Named(name string) (string, bool) {
	for _, col := range c {
		if col.Name != "" && col.Name == name {
			return col.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes purely positional columns as an array. When any column
// is named the result is an object; positional columns take the keys "0",
// "1", ... in order of appearance.
func (c Columns) MarshalJSON() ([]byte, error) {
	named := false
	for _, col := range c {
		if col.Name != "" {
			named = true
			break
		}
	}
	if !named {
		return json.Marshal(c.Positional())
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	pos := 0
	for i, col := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := col.Name
		if key == "" {
			key = strconv.Itoa(pos)
			pos++
		}
		kb, _ := json.Marshal(key)
		vb, _ := json.Marshal(col.Value)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of a column in the row.
func (r Row) Get(column string) (Value, bool) {
	for _, cell := range r {
		if cell.Column == column {
			return cell.Value, true
		}
	}
	return nil, false
}

// With returns the row with the column set. An existing column keeps its
// position.
func (r Row) With(column string, v Value) Row {
	for i, cell := range r {
		if cell.Column == column {
			r[i].Value = v
			return r
		}
	}
	return append(r, Cell{Column: column, Value: v})
}

// MarshalJSON encodes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(cell.Column)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(cell.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
