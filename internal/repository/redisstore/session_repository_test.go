package redisstore

import (
	"context"
	"testing"
	"time"

	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/rag/index"
	"legal-analyzer-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := index.NewMemoryBackend()
	h, err := backend.Build(ctx, "abc", []string{"clause one", "clause two"}, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := store.NewSession("abc", now)
	s.DocumentProcessed = true
	s.Index = h
	s.History = []llm.Message{
		{Role: llm.RoleUser, Content: "What is clause one?"},
		{Role: llm.RoleAssistant, Content: "It sets the rent."},
	}

	data, err := encodeSession(s)
	require.NoError(t, err)

	ix := index.NewIndexer(index.DefaultConfig(), nil, backend, nil)
	got, err := decodeSession(ctx, data, ix)
	require.NoError(t, err)

	assert.Equal(t, s.ID, got.ID)
	assert.True(t, got.DocumentProcessed)
	assert.Equal(t, s.History, got.History)
	assert.True(t, got.CreatedAt.Equal(now))
	require.NotNil(t, got.Index)
	assert.Equal(t, 2, got.Index.Len())

	matches, err := got.Index.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "clause two", matches[0].Text)
}

func TestDecodeSessionWithoutIndex(t *testing.T) {
	data, err := encodeSession(store.NewSession("fresh", time.Now()))
	require.NoError(t, err)

	got, err := decodeSession(context.Background(), data, nil)
	require.NoError(t, err)
	assert.Nil(t, got.Index)
	assert.False(t, got.DocumentProcessed)
}

func TestDecodeSessionUnknownBackend(t *testing.T) {
	data := []byte(`{"id":"x","index":{"backend":"faiss","key":"x"}}`)
	ix := index.NewIndexer(index.DefaultConfig(), nil, index.NewMemoryBackend(), nil)

	_, err := decodeSession(context.Background(), data, ix)
	assert.ErrorIs(t, err, index.ErrUnknownBackend)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "legal-analyzer:session:abc", sessionKey("abc"))
}
