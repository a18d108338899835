// Package fields converts the string values of a scenario table row into
// structured field values.
//
// Two delimiters are recognized. ", " separates the values of a multi-value
// field, and " - " separates the columns of one value:
//
//	A, B, C              three values
//	A - B, C - D         two values of two columns each
//	url: /x - Title      one value with a named and a positional column
//
// A field may also be spread across several table columns using a
// "field:column" header. Following headers may drop the field name and
// write only ":column" to continue the same field:
//
//	| field_link:uri | :title  |
//	| /a, /b         | A, B    |
//
// yields field_link = [{uri: /a, title: A}, {uri: /b, title: B}].
package fields

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	valueSeparator  = ", "
	columnSeparator = " - "
	inlineSeparator = ": "
)

// Predicate reports whether name is a field of the entity kind. Fields for
// which it returns false are left untouched.
type Predicate func(kind types.Kind, name string) bool

// Parse returns a copy of raw with every recognized field replaced by its
// parsed Value. raw is not modified. It fails with ErrMalformedFieldName when
// a ":column" header appears before any "field:column" header.
func Parse(kind types.Kind, raw *types.Entity, isField Predicate) (*types.Entity, error) {
	if raw == nil {
		return nil, types.ErrNilEntity
	}
	out := raw.Clone()
	groups := newGroups()

	var group, column string
	for _, field := range raw.Fields() {
		switch idx := strings.IndexByte(field, ':'); {
		case idx < 0:
			group = ""
		case idx > 0:
			group, column = field[:idx], field[idx+1:]
		case group == "":
			return nil, fmt.Errorf("%w: %s", types.ErrMalformedFieldName, field)
		default:
			column = field[1:]
		}

		multicolumn := group != "" && column != ""
		name := field
		if group != "" {
			name = group
		}
		if !isField(kind, name) {
			continue
		}

		v, _ := raw.Get(field)
		s, ok := v.(string)
		if !ok {
			continue
		}

		entries := strings.Split(s, valueSeparator)
		values := make(types.List, 0, len(entries))
		for i, entry := range entries {
			value := parseEntry(entry, multicolumn)
			if multicolumn {
				groups.set(group, i, column, value)
				continue
			}
			values = append(values, value)
		}
		if multicolumn {
			out.Delete(field)
		} else {
			out.Set(name, values)
		}
	}

	for _, g := range groups.order {
		out.Set(g, groups.rows[g])
	}
	return out, nil
}

// parseEntry splits one value entry into columns. Inline names are only
// recognized outside multi-column fields.
func parseEntry(entry string, multicolumn bool) types.Value {
	if !strings.Contains(entry, columnSeparator) {
		return types.Scalar(entry)
	}
	segments := strings.Split(entry, columnSeparator)
	columns := make(types.Columns, 0, len(segments))
	for _, seg := range segments {
		if !multicolumn {
			if name, value, ok := splitInline(seg); ok {
				columns = append(columns, types.Column{Name: name, Value: value})
				continue
			}
		}
		columns = append(columns, types.Column{Value: seg})
	}
	return columns
}

// splitInline splits "name: value". The name must be at least one character.
func splitInline(seg string) (name, value string, ok bool) {
	if len(seg) < 2 {
		return "", "", false
	}
	idx := strings.Index(seg[1:], inlineSeparator)
	if idx < 0 {
		return "", "", false
	}
	idx++
	return seg[:idx], seg[idx+len(inlineSeparator):], true
}

// groups accumulates multi-column rows, keeping groups in first-seen order.
type groups struct {
	order []string
	rows  map[string]types.ColumnList
}

func newGroups() *groups {
	return &groups{rows: make(map[string]types.ColumnList)}
}

func (g *groups) set(group string, index int, column string, v types.Value) {
	rows, ok := g.rows[group]
	if !ok {
		g.order = append(g.order, group)
	}
	for len(rows) <= index {
		rows = append(rows, nil)
	}
	rows[index] = rows[index].With(column, v)
	g.rows[group] = rows
}
