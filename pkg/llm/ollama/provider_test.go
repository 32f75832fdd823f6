package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-analyzer-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaChatSendsSchemaAsFormat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: `{"decision":"accept"}`}, Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", 0.1)
	schema := map[string]any{"type": "object"}
	out, err := p.Chat(context.Background(), []llm.Message{{Role: "model", Content: "hi"}}, llm.WithResponseSchema("x", schema))

	require.NoError(t, err)
	assert.Equal(t, `{"decision":"accept"}`, out)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "assistant", got.Messages[0].Role)
	assert.NotNil(t, got.Format)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
}

func TestOllamaChatStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing", 0).Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
