package logging

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

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&Config{Level: "warn", Console: &buf, NoCaller: true})
	require.NoError(t, err)

	log.Infof("hidden %d", 1)
	log.Warnw("record rejected", "record", "Login works")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "record rejected")
	assert.Contains(t, out, "Login works")
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&Config{Console: &buf})
	require.NoError(t, err)

	log.Debug("debug line")
	log.Info("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_FileOutputIsJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "upload.log")

	log, err := New(&Config{Level: "DEBUG", Filename: path, Console: &buf})
	require.NoError(t, err)

	log.Debugw("POST /testcases", "operation", "create test case")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line %q", line)
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "POST /testcases", entry["msg"])
	assert.Equal(t, "create test case", entry["operation"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, buf.String(), "POST /testcases")
}

func TestLastNthIndexString(t *testing.T) {
	assert.Equal(t, "application/uploader.go:42", lastNthIndexString("zephyr-upload/internal/application/uploader.go:42", "/", 2))
	assert.Equal(t, "main.go:3", lastNthIndexString("main.go:3", "/", 2))
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	assert.NoError(t, log.Sync())
}
