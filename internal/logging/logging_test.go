package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoFileDiscards(t *testing.T) {
	log, closer, err := New(Config{})
	require.NoError(t, err)
	defer closer()
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "zpv.log")
	log, closer, err := New(Config{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", zap.String("page", "a.md"))
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"shown"`)
	assert.Contains(t, string(data), `"page":"a.md"`)
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zpv.log")
	log, closer, err := New(Config{Level: "loud", File: path})
	require.NoError(t, err)
	defer closer()
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
