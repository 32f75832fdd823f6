package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewIsolatedLogger(path)

	l.Info("analyzer", "Analysis completed", map[string]interface{}{"document_type": "NDA"})
	l.Error("analyzer", "Analysis failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("analyzer", "below file level", nil)
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "analyzer", entries[0]["module"])
	assert.Equal(t, "Analysis completed", entries[0]["message"])
	assert.Equal(t, "NDA", entries[0]["details"].(map[string]interface{})["document_type"])

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Warn("x", "y", nil)
	assert.NoError(t, l.Sync())
}
