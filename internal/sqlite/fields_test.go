package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestIsField_SeededFromConfig(t *testing.T) {
	b := attach(t, types.Config{Fields: map[string][]string{
		"node": {"field_tags", "field_image"},
		"term": {"field_color"},
	}})

	assert.True(t, b.IsField(types.KindNode, "field_tags"))
	assert.True(t, b.IsField(types.KindNode, "field_image"))
	assert.True(t, b.IsField(types.KindTerm, "field_color"))
	assert.False(t, b.IsField(types.KindNode, "field_color"))
	assert.False(t, b.IsField(types.KindUser, "field_tags"))
}

func TestIsField_SeededFromJSONL(t *testing.T) {
	dir := t.TempDir()
	content := `{"entity_type":"user","field_name":"field_bio"}
not json
{"entity_type":"comment","field_name":"field_x"}

{"entity_type":"node","field_name":""}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fields.jsonl"), []byte(content), 0644))

	b := attach(t, types.Config{DataDir: dir})
	assert.True(t, b.IsField(types.KindUser, "field_bio"))

	defs, err := b.Fields()
	require.NoError(t, err)
	assert.Equal(t, []FieldDefinition{{EntityType: "user", FieldName: "field_bio"}}, defs)
}

func TestDefineField_PersistsAndRespectsCache(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, types.Config{DataDir: dir})

	assert.False(t, b.IsField(types.KindNode, "field_body"), "loads the node cache")

	require.NoError(t, b.DefineField(types.KindNode, "field_body"))
	require.NoError(t, b.DefineField(types.KindNode, "field_body"), "redefining is a no-op")
	assert.False(t, b.IsField(types.KindNode, "field_body"), "cached answer is kept")

	require.NoError(t, b.ClearStaticCaches())
	assert.True(t, b.IsField(types.KindNode, "field_body"))

	defs, err := readJSONL[FieldDefinition](filepath.Join(dir, "fields.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, []FieldDefinition{{EntityType: "node", FieldName: "field_body"}}, defs)

	assert.ErrorIs(t, b.DefineField(types.KindNode, ""), types.ErrInvalidData)
}

func TestDefineField_SurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	require.NoError(t, b.DefineField(types.KindTerm, "field_weight"))
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()
	assert.True(t, b.IsField(types.KindTerm, "field_weight"))
}

func TestJSONL_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.jsonl")
	in := []FieldDefinition{
		{EntityType: "node", FieldName: "a"},
		{EntityType: "user", FieldName: "b"},
	}
	require.NoError(t, writeJSONL(path, in))

	out, err := readJSONL[FieldDefinition](path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONL_ReadMissingFile(t *testing.T) {
	_, err := readJSONL[FieldDefinition](filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
