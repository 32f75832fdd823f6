package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Legal Document Analyzer", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "gemini-2.5-flash", cfg.Ai.LLMModel)
	assert.InDelta(t, 0.1, cfg.Ai.Temperature, 1e-9)
	assert.Equal(t, 10, cfg.Limits.MaxFileSizeMB)
	assert.Equal(t, 30*time.Second, cfg.Limits.PDFTimeout)
	assert.Equal(t, 1000, cfg.Rag.ChunkSize)
	assert.Equal(t, 200, cfg.Rag.ChunkOverlap)
	assert.Equal(t, "text-embedding-3-small", cfg.Ai.EmbeddingModel)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
name = "Contracts Desk"
port = "9000"

[ai]
llm_provider = "ollama"
llm_model = "llama3"
analyze_timeout = "2m"

[rag]
index_backend = "pgvector"
`), 0o600))

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("SESSION_TTL", "3600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Contracts Desk", cfg.App.Name)
	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
	assert.Equal(t, 2*time.Minute, cfg.Ai.AnalyzeTimeout)
	assert.Equal(t, "pgvector", cfg.Rag.IndexBackend)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 45*time.Second, cfg.Ai.ValidateTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"LLM_PROVIDER":  "claude-local",
		"SESSION_STORE": "memcached",
		"CHUNK_OVERLAP": "1000",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_CONFIG_FILE", "")
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestCorsOrigins(t *testing.T) {
	cfg := defaults()
	cfg.App.CorsAllowedOrigins = " https://a.example , ,https://b.example"
	assert.Equal(t, "https://a.example,https://b.example", cfg.CorsOrigins())

	cfg.App.Debug = true
	assert.Equal(t, "*", cfg.CorsOrigins())
}
