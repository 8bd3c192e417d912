package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetWriterForAll(os.Stderr)
		SetVerbose(false)
		SetColor(true)
		_ = Close()
	})
}

func TestDebugRequiresVerbose(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetWriterForAll(&buf)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "DEBUG")
}

func TestNoColorOutput(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetWriterForAll(&buf)
	SetColor(false)

	Warn("careful")
	assert.NotContains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "WARN  careful")
}

func TestColorize(t *testing.T) {
	resetLogger(t)

	assert.Equal(t, ColorRed+"x"+ColorReset, Colorize(ColorRed, "x"))

	SetColor(false)
	assert.Equal(t, "x", Colorize(ColorRed, "x"))
}

func TestAddLogFileStripsColors(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetWriterForAll(&buf)

	path := filepath.Join(t.TempDir(), "pytree.log")
	require.NoError(t, AddLogFile(path))

	Info("written to both")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to both")
	assert.NotContains(t, string(data), "\033[")
	assert.Contains(t, buf.String(), ColorBlue)
}
