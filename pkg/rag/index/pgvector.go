package index

import (
	"context"
	"fmt"
)

const PgvectorBackendName = "pgvector"

// ChunkStore persists embedded chunks and answers nearest-neighbour queries.
type ChunkStore interface {
	ReplaceChunks(ctx context.Context, key string, chunks []string, vectors [][]float32) error
	SearchChunks(ctx context.Context, key string, query []float32, k int) ([]Match, error)
	CountChunks(ctx context.Context, key string) (int, error)
	DeleteChunks(ctx context.Context, key string) error
}

// PgvectorBackend keeps vectors in Postgres; handles only carry the key.
type PgvectorBackend struct {
	store ChunkStore
}

func NewPgvectorBackend(store ChunkStore) *PgvectorBackend {
	return &PgvectorBackend{store: store}
}

func (b *PgvectorBackend) Name() string { return PgvectorBackendName }

func (b *PgvectorBackend) Build(ctx context.Context, key string, chunks []string, vectors [][]float32) (Handle, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	if err := b.store.ReplaceChunks(ctx, key, chunks, vectors); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	return &pgvectorIndex{key: key, n: len(chunks), store: b.store}, nil
}

func (b *PgvectorBackend) Restore(ctx context.Context, s Snapshot) (Handle, error) {
	n, err := b.store.CountChunks(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no chunks stored for %q", ErrEmptyText, s.Key)
	}
	return &pgvectorIndex{key: s.Key, n: n, store: b.store}, nil
}

func (b *PgvectorBackend) Drop(ctx context.Context, s Snapshot) error {
	if err := b.store.DeleteChunks(ctx, s.Key); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

type pgvectorIndex struct {
	key   string
	n     int
	store ChunkStore
}

func (p *pgvectorIndex) Len() int { return p.n }

func (p *pgvectorIndex) Snapshot() Snapshot {
	return Snapshot{Backend: PgvectorBackendName, Key: p.key}
}

func (p *pgvectorIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k > p.n {
		k = p.n
	}
	return p.store.SearchChunks(ctx, p.key, query, k)
}
