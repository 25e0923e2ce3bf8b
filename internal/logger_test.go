package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "babycare.log")
	logger, err := NewLogger(LogOptions{Env: "production", Level: "info", File: file})
	require.NoError(t, err)

	logger.Debugf("hidden %d", 1)
	logger.Infof("entry %s saved", "e1")
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"entry e1 saved"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(LogOptions{Env: "development", Level: "loud"})
	assert.Error(t, err)
}
