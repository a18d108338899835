package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Entity errors.
var (
	ErrNilEntity   = errors.New("entity must not be nil")
	ErrInvalidData = errors.New("invalid entity data")
	ErrNotFound    = errors.New("entity not found")

	// ErrMalformedFieldName is returned by the field parser when a column
	// header (":column") appears with no preceding multi-column field.
	ErrMalformedFieldName = errors.New("field name missing for column")
)

// Entity is an insertion-ordered set of named fields. A raw entity holds the
// string values authored in a scenario table row; after parsing, recognized
// fields hold a Value instead. Handles returned by a Driver are entities too,
// carrying whatever identifiers the backend assigned (nid, uid, tid).
//
// The zero value is ready to use.
type Entity struct {
	keys   []string
	values map[string]any
}

// NewEntity creates an empty entity.
func NewEntity() *Entity {
	return &Entity{values: make(map[string]any)}
}

// EntityOf builds an entity from alternating name/value pairs, in order.
// A trailing name without a value is set to the empty string.
func EntityOf(pairs ...string) *Entity {
	e := NewEntity()
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		e.Set(pairs[i], value)
	}
	return e
}

// Set assigns a field. An existing field keeps its position; a new field is
// appended.
func (e *Entity) Set(name string, value any) {
	if e.values == nil {
		e.values = make(map[string]any)
	}
	if _, ok := e.values[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.values[name] = value
}

// Get returns the value of a field and whether it is present.
func (e *Entity) Get(name string) (any, bool) {
	if e == nil || e.values == nil {
		return nil, false
	}
	v, ok := e.values[name]
	return v, ok
}

// Has reports whether the field is present.
func (e *Entity) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// String returns the field rendered as a string, or "" when the field is
// absent. Plain strings and Scalars are returned as is.
func (e *Entity) String(name string) string {
	v, ok := e.Get(name)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case Scalar:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

// Delete removes a field. Deleting an absent field is a no-op.
func (e *Entity) Delete(name string) {
	if _, ok := e.Get(name); !ok {
		return
	}
	delete(e.values, name)
	for i, k := range e.keys {
		if k == name {
			e.keys = append(e.keys[:i:i], e.keys[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in insertion order.
func (e *Entity) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Len returns the number of fields.
func (e *Entity) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Clone returns a shallow copy: the field order and map are new, the values
// are shared.
func (e *Entity) Clone() *Entity {
	c := NewEntity()
	if e == nil {
		return c
	}
	c.keys = make([]string, len(e.keys))
	copy(c.keys, e.keys)
	for k, v := range e.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON encodes the entity as a JSON object with fields in insertion
// order.
func (e *Entity) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(e.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the field order of the input.
// String values decode to string; anything else decodes to the generic JSON
// types (float64, []any, map[string]any).
func (e *Entity) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected JSON object", ErrInvalidData)
	}
	e.keys = nil
	e.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key", ErrInvalidData)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding field %s: %w", key, err)
		}
		e.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
