package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	logger, err := New(Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("bundle assembled", zap.Int("files", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rec), "exactly one JSON record")
	assert.Equal(t, "bundle assembled", rec["message"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, float64(3), rec["files"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestDevelopmentLogger(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true, OutputPaths: []string{filepath.Join(t.TempDir(), "dev.log")}})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	quiet, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, quiet.Core().Enabled(zap.InfoLevel))
	assert.False(t, quiet.Core().Enabled(zap.DebugLevel))
}
