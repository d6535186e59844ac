package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "horizontal", cfg.Axis)
	assert.Equal(t, 1, cfg.PrefetchPages)
	assert.True(t, cfg.Animate)
	assert.Equal(t, 250*time.Millisecond, cfg.Animation())
	assert.Equal(t, []string{".md", ".markdown", ".txt"}, cfg.Extensions)
	assert.Empty(t, cfg.File)
	if diff := cmp.Diff(DefaultKeyBindings(), cfg.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultMatchesLoad(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, Default()); diff != "" {
		t.Errorf("Default mismatch (-load +default):\n%s", diff)
	}
	require.NoError(t, Default().Validate())
}

func TestDefaultFileMatchesDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	fromFile, err := Load(path)
	require.NoError(t, err)
	defaults, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, path, fromFile.File)
	fromFile.File = ""
	if diff := cmp.Diff(defaults, fromFile); diff != "" {
		t.Errorf("config init writes non-default values (-defaults +file):\n%s", diff)
	}
}

func TestLoadFromDirectoryAndEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "zpv"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zpv", "config.yaml"), []byte(
		"theme: light\naxis: vertical\nkeys:\n  next: [\"x\"]\n"), 0o644))
	t.Setenv("ZPV_PREFETCH_PAGES", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "vertical", cfg.Axis)
	assert.Equal(t, 3, cfg.PrefetchPages)
	assert.Equal(t, []string{"x"}, cfg.Keys.Next)
	assert.Equal(t, DefaultKeyBindings().Prev, cfg.Keys.Prev)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Theme = "neon"
	bad.Axis = "diagonal"
	bad.PrefetchPages = -1
	bad.Extensions = []string{"md"}
	bad.MemoryThreshold = 150
	err = bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"neon", "diagonal", "prefetch_pages", `"md"`, "memory_threshold"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path, false))
	err := WriteDefault(path, false)
	assert.True(t, errors.Is(err, ErrExists))
	assert.NoError(t, WriteDefault(path, true))
}
