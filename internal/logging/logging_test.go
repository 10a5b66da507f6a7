package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/config"
	"tasksync/internal/logging"
)

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(&config.Config{}, &buf)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "k=v")
}

func TestNew_DebugFlag(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(&config.Config{Debug: true}, &buf)
	defer closer.Close()

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_LogFileGetsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasksync.log")
	cfg := &config.Config{Settings: config.DefaultSettings()}
	cfg.Settings.LogFile = path

	var buf bytes.Buffer
	logger, closer := logging.New(cfg, &buf)
	logger.With("list", "l1").Debug("reconciled", "added", 2)
	require.NoError(t, closer.Close())

	assert.Empty(t, buf.String(), "debug stays off the console")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "reconciled", rec["msg"])
	assert.Equal(t, "l1", rec["list"])
	assert.Equal(t, float64(2), rec["added"])
}
