package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONToFileAndStdout(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "niente.log")

	logger, err := newLogger(&stdout, LoggerOptions{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("article saved", slog.Int64("id", 3))
	logger.Debug("dropped")
	require.NoError(t, logger.Close())

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &record))
	assert.Equal(t, "article saved", record["msg"])
	assert.Equal(t, float64(3), record["id"])

	fromFile, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), string(fromFile))
}

func TestLoggerTextFormat(t *testing.T) {
	var stdout bytes.Buffer

	logger, err := newLogger(&stdout, LoggerOptions{Level: "warn", Format: "text"})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud", slog.String("op", "update"))
	require.NoError(t, logger.Close())

	assert.NotContains(t, stdout.String(), "quiet")
	assert.Contains(t, stdout.String(), "msg=loud")
	assert.Contains(t, stdout.String(), "op=update")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
