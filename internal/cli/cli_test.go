package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["analyze"])
	assert.True(t, names["validate"])
	assert.True(t, names["watch"])
}

func TestAnalyzeMissingFile(t *testing.T) {
	err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestValidateRequiresOneFile(t *testing.T) {
	err := execute(t, "validate")

	assert.Error(t, err)
}
