package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleScenario = `
name: article with tags
description: creates tagged content
tags: [content]
steps:
  - name: create tags
    create: term
    rows:
      - name: Tag A
        vocabulary: tags
  - create: node
    rows:
      - title: Hello
        field_tags: A, B
        field_image:alt: foo, bar
        ":title": t1, t2
        status: 1
      - title: Empty
        body: ~
`

func TestDecode(t *testing.T) {
	scenarios, err := Decode(strings.NewReader(articleScenario))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	sc := scenarios[0]
	assert.Equal(t, "article with tags", sc.Name)
	assert.Equal(t, []string{"content"}, sc.Tags)
	require.Len(t, sc.Steps, 2)

	action, err := sc.Steps[1].Action()
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action)
	assert.Equal(t, "create 2 node", sc.Steps[1].Label())
	assert.Equal(t, "create tags", sc.Steps[0].Label())

	row := sc.Steps[1].Rows[0].Entity()
	assert.Equal(t, []string{"title", "field_tags", "field_image:alt", ":title", "status"}, row.Fields())
	assert.Equal(t, "A, B", row.String("field_tags"))
	assert.Equal(t, "1", row.String("status"), "scalars keep their literal text")

	empty := sc.Steps[1].Rows[1].Entity()
	assert.True(t, empty.Has("body"))
	assert.Equal(t, "", empty.String("body"))
}

func TestDecodeMultipleDocuments(t *testing.T) {
	input := `
name: one
steps:
  - logout: true
---
name: two
steps:
  - check:
      logged_in: false
`
	scenarios, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "one", scenarios[0].Name)
	assert.Equal(t, "two", scenarios[1].Name)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing name",
			input:   "steps:\n  - logout: true\n",
			wantErr: ErrInvalidScenario,
		},
		{
			name:    "no steps",
			input:   "name: x\n",
			wantErr: ErrInvalidScenario,
		},
		{
			name:    "step without action",
			input:   "name: x\nsteps:\n  - name: nothing\n",
			wantErr: ErrNoAction,
		},
		{
			name:    "step with two actions",
			input:   "name: x\nsteps:\n  - login: a\n    logout: true\n",
			wantErr: ErrMultipleActions,
		},
		{
			name:    "create without rows",
			input:   "name: x\nsteps:\n  - create: node\n",
			wantErr: ErrNoRows,
		},
		{
			name:    "role without rid",
			input:   "name: x\nsteps:\n  - role: {label: Editor}\n",
			wantErr: ErrInvalidScenario,
		},
		{
			name:    "nested row value",
			input:   "name: x\nsteps:\n  - create: node\n    rows:\n      - title: [a, b]\n",
			wantMsg: "row must be a mapping of scalar values",
		},
		{
			name:    "unknown step key",
			input:   "name: x\nsteps:\n  - delete: node\n",
			wantMsg: "delete",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}
	write("b.yaml", "name: b\nsteps:\n  - logout: true\n")
	write("a.yml", "name: a\nsteps:\n  - logout: true\n")
	write("notes.txt", "not a scenario")
	single := write("c.yaml", "name: c\nsteps:\n  - logout: true\n")

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, filepath.Join(dir, "a.yml"), scenarios[0].File)

	scenarios, err = LoadScenarios(single)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, single, scenarios[0].File)

	_, err = LoadScenarios(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
