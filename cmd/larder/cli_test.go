package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/larder"
)

// dirs holds the config and data directories of one test.
type dirs struct {
	config string
	data   string
}

func newDirs(t *testing.T) dirs {
	t.Helper()
	return dirs{config: t.TempDir(), data: t.TempDir()}
}

// execute runs the CLI in-process and returns stdout and the command error.
func (d dirs) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagConfigDir, flagDataDir = "", ""
	flagJSON, flagVerbose, flagFailFast = false, false, false
	config = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config-dir", d.config, "--data-dir", d.data}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (d dirs) writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(d.config, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	out, err := newDirs(t).execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "larder "+larder.Version+"\n", out)
}

func TestInit(t *testing.T) {
	d := newDirs(t)
	out, err := d.execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "larder initialized successfully")
	assert.Contains(t, out, d.data)

	content, err := os.ReadFile(paths.ConfigFile(d.config))
	require.NoError(t, err)
	assert.Equal(t, defaultConfigYAML, string(content))

	_, err = os.Stat(filepath.Join(d.data, paths.DatabaseName))
	assert.NoError(t, err)
}

func TestConfigFieldsSeedBackend(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.WriteFile(paths.ConfigFile(d.config), []byte(`
backend: sqlite
api_version: 8
fields:
  node: [field_tags]
`), 0o644))

	out, err := d.execute(t, "--json", "field", "list")
	require.NoError(t, err)

	var defs []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	assert.Equal(t, []map[string]string{{"entity_type": "node", "field_name": "field_tags"}}, defs)
}

func TestFieldAddAndParse(t *testing.T) {
	d := newDirs(t)

	out, err := d.execute(t, "field", "add", "node", "field_tags")
	require.NoError(t, err)
	assert.Contains(t, out, "defined node field field_tags")

	_, err = d.execute(t, "field", "add", "node", "field_image")
	require.NoError(t, err)

	out, err = d.execute(t, "field", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "field_image")

	out, err = d.execute(t, "parse", "node", "title=Hello", "field_tags=A, B",
		"field_image:alt=foo, bar", ":title=t1, t2")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Hello", got["title"])
	assert.Equal(t, []any{"A", "B"}, got["field_tags"])
	assert.Equal(t, []any{
		map[string]any{"alt": "foo", "title": "t1"},
		map[string]any{"alt": "bar", "title": "t2"},
	}, got["field_image"])
	assert.NotContains(t, got, "field_image:alt")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"parse", "widget", "a=b"}},
		{"missing equals", []string{"parse", "node", "title"}},
		{"orphan column", []string{"parse", "node", ":alt=foo"}},
		{"too few args", []string{"parse", "node"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newDirs(t).execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestRunCommand(t *testing.T) {
	d := newDirs(t)
	passing := d.writeScenario(t, "passing.yaml", `
name: creates an article
steps:
  - create: node
    rows:
      - title: Hello
`)
	failing := d.writeScenario(t, "failing.yaml", `
name: wrong login state
steps:
  - check:
      logged_in: true
`)

	out, err := d.execute(t, "run", passing)
	require.NoError(t, err)
	assert.Contains(t, out, "All scenarios passed")

	out, err = d.execute(t, "run", "--json", passing, failing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errScenariosFailed))
	assert.Equal(t, exitUserError, exitCode(err))

	var report struct {
		Passed int `json:"passed_scenarios"`
		Failed int `json:"failed_scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)

	_, err = d.execute(t, "run", filepath.Join(d.config, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("bad flag")))
	assert.Equal(t, exitUserError, exitCode(userError(errors.New("x"))))
	assert.Equal(t, exitSysError, exitCode(systemError(errors.New("x"))))
}
