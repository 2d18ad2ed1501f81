package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupLoggerSplitsErrorsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, closers, err := setupLogger(&stdout, &stderr, "debug", "", FormatText)
	require.NoError(t, err)
	assert.Empty(t, closers)

	logger.Debug("scanning", "class", "masala::numeric::Foo")
	logger.Error("failed", "class", "masala::numeric::Bar")

	assert.Contains(t, stdout.String(), "scanning")
	assert.NotContains(t, stdout.String(), "failed")
	assert.Contains(t, stderr.String(), "failed")
	assert.NotContains(t, stderr.String(), "scanning")
}

func TestSetupLoggerAutoFormatPicksJSONOffTerminal(t *testing.T) {
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(io.Writer) bool { return false }

	var stdout bytes.Buffer
	logger, _, err := setupLogger(&stdout, io.Discard, "trace", "", FormatAuto)
	require.NoError(t, err)
	logger.Log(t.Context(), LevelTrace, "dump", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rec))
	assert.Equal(t, "dump", rec["msg"])
	assert.Equal(t, "TRACE", rec["level"])
}

func TestSetupLoggerAutoFormatPicksTextOnTerminal(t *testing.T) {
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(io.Writer) bool { return true }

	var stdout bytes.Buffer
	logger, _, err := setupLogger(&stdout, io.Discard, "info", "", "")
	require.NoError(t, err)
	logger.Info("hello")
	assert.True(t, strings.HasPrefix(stdout.String(), "time="), stdout.String())
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigen.log")
	var stderr bytes.Buffer
	logger, closers, err := setupLogger(io.Discard, &stderr, "info", path, FormatText)
	require.NoError(t, err)
	require.Len(t, closers, 1)
	logger.Info("written")
	logger.Debug("filtered")
	require.NoError(t, closers[0].Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
	assert.NotContains(t, string(data), "filtered")
	assert.Contains(t, stderr.String(), "written")
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	_, _, err := setupLogger(io.Discard, io.Discard, "info", "", "xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestArtifactLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewArtifact(&buf).(*artifactLogger)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	l.Log("numeric_api/auto_generated_api/Foo_API.hh", "header", []byte("abc"))
	assert.Equal(t,
		"2024/05/01 12:00:00 header 3 bytes sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad numeric_api/auto_generated_api/Foo_API.hh\n",
		buf.String())

	// A nil writer is a no-op.
	NewArtifact(nil).Log("x", "header", []byte("abc"))
}
