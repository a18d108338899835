package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitySetKeepsOrder(t *testing.T) {
	e := NewEntity()
	e.Set("title", "A")
	e.Set("body", "B")
	e.Set("title", "C")

	assert.Equal(t, []string{"title", "body"}, e.Fields())
	assert.Equal(t, "C", e.String("title"))
	assert.Equal(t, 2, e.Len())
}

func TestEntityZeroValue(t *testing.T) {
	var e Entity
	assert.False(t, e.Has("x"))
	e.Set("x", "1")
	assert.Equal(t, "1", e.String("x"))
}

func TestEntityDelete(t *testing.T) {
	e := EntityOf("a", "1", "b", "2", "c", "3")

	e.Delete("b")
	assert.Equal(t, []string{"a", "c"}, e.Fields())
	assert.False(t, e.Has("b"))

	e.Delete("missing")
	assert.Equal(t, []string{"a", "c"}, e.Fields())

	e.Set("b", "4")
	assert.Equal(t, []string{"a", "c", "b"}, e.Fields())
}

func TestEntityOfTrailingName(t *testing.T) {
	e := EntityOf("a", "1", "b")
	assert.Equal(t, []string{"a", "b"}, e.Fields())
	assert.Equal(t, "", e.String("b"))
	assert.True(t, e.Has("b"))
}

func TestEntityString(t *testing.T) {
	e := NewEntity()
	e.Set("s", "text")
	e.Set("scalar", Scalar("value"))
	e.Set("n", int64(42))
	e.Set("nil", nil)

	assert.Equal(t, "text", e.String("s"))
	assert.Equal(t, "value", e.String("scalar"))
	assert.Equal(t, "42", e.String("n"))
	assert.Equal(t, "", e.String("nil"))
	assert.Equal(t, "", e.String("missing"))
}

func TestEntityCloneIsIndependent(t *testing.T) {
	orig := EntityOf("a", "1", "b", "2")
	c := orig.Clone()

	c.Set("a", "changed")
	c.Set("z", "new")
	c.Delete("b")

	assert.Equal(t, []string{"a", "b"}, orig.Fields())
	assert.Equal(t, "1", orig.String("a"))
	assert.Equal(t, []string{"a", "z"}, c.Fields())
}

func TestEntityNilReceiver(t *testing.T) {
	var e *Entity
	assert.Equal(t, 0, e.Len())
	assert.Nil(t, e.Fields())
	assert.False(t, e.Has("a"))
	assert.Equal(t, 0, e.Clone().Len())
}

func TestEntityJSONKeepsOrder(t *testing.T) {
	e := EntityOf("z", "1", "a", "2", "m", "3")

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2","m":"3"}`, string(b))

	var back Entity
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []string{"z", "a", "m"}, back.Fields())
	assert.Equal(t, "2", back.String("a"))
}

func TestEntityUnmarshalGenericValues(t *testing.T) {
	var e Entity
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["a","b"],"n":3,"obj":{"k":"v"}}`), &e))

	tags, _ := e.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)
	n, _ := e.Get("n")
	assert.Equal(t, float64(3), n)
	assert.Equal(t, []string{"tags", "n", "obj"}, e.Fields())
}

func TestEntityUnmarshalRejectsNonObject(t *testing.T) {
	var e Entity
	err := json.Unmarshal([]byte(`["a"]`), &e)
	assert.ErrorIs(t, err, ErrInvalidData)
}
