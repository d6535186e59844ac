package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.txt", "skip.go", ".hidden.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	out, err := execute(t, "ls", "--path", dir, "--json")
	require.NoError(t, err)

	var got []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Name)
	assert.Equal(t, "text", got[0].Kind)
	assert.Equal(t, "b.md", got[1].Name)
	assert.Equal(t, "markdown", got[1].Kind)
}

func TestListTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	out, err := execute(t, "ls", "--path", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#", "NAME", "KIND", "SIZE", "MODIFIED"}, strings.Fields(lines[0])[:5])
	assert.Equal(t, []string{"1", "a.txt", "text", "1"}, strings.Fields(lines[1])[:4])
	assert.Equal(t, []string{"2", "notes.md", "markdown", "5"}, strings.Fields(lines[2])[:4])
	assert.NotContains(t, out, "│")
}

func TestReplayCommand(t *testing.T) {
	script := filepath.Join(t.TempDir(), "s.jsonc")
	require.NoError(t, os.WriteFile(script, []byte(`{
		// two pages
		"pages": 2, "width": 10, "height": 4,
		"steps": [{"op": "appear"}, {"op": "reload", "index": 1}],
	}`), 0o644))

	out, err := execute(t, "replay", script)
	require.NoError(t, err)
	assert.Contains(t, out, "did-show 1")
	assert.Contains(t, out, "= position=1.00 major=p1")
}

func TestReplayReportsInvariant(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(script, []byte(`{"pages": 2, "steps": [
		{"op": "appear"}, {"op": "reload", "index": 0}, {"op": "insert", "indices": [7]}
	]}`), 0o644))

	out, err := execute(t, "replay", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 3 (insert)")
	assert.Contains(t, out, "> insert [7]")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zpv.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# from "+path)
	assert.Contains(t, out, "axis: horizontal")
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}
