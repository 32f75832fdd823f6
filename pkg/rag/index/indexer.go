package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/embedding"
	"legal-analyzer-be/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Config controls chunking and embedding.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
	EmbedTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{ChunkSize: 1000, ChunkOverlap: 200, Workers: 4, EmbedTimeout: 60 * time.Second}
}

// Indexer splits text, embeds the chunks and builds a Handle on the configured backend.
type Indexer struct {
	cfg      Config
	embedder embedding.EmbeddingProvider
	backend  Backend
	restore  map[string]Backend
	logger   logger.ILogger
}

// NewIndexer builds on backend. Extra backends are only used to restore snapshots.
func NewIndexer(cfg Config, embedder embedding.EmbeddingProvider, backend Backend, log logger.ILogger, extra ...Backend) *Indexer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	restore := map[string]Backend{backend.Name(): backend}
	for _, b := range extra {
		restore[b.Name()] = b
	}
	return &Indexer{cfg: cfg, embedder: embedder, backend: backend, restore: restore, logger: log}
}

// Build indexes text under key. Any chunking or embedding failure is returned.
func (ix *Indexer) Build(ctx context.Context, key, text string) (Handle, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	chunks := utils.SplitText(text, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap)

	ctx, cancel := ix.withTimeout(ctx)
	defer cancel()

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			res, err := ix.embedder.Generate(gctx, chunk, embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			vectors[i] = res.Embedding.Values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h, err := ix.backend.Build(ctx, key, chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("build %s index: %w", ix.backend.Name(), err)
	}

	ix.logger.Info("indexer", "Document indexed", map[string]interface{}{
		"key":     key,
		"chunks":  len(chunks),
		"backend": ix.backend.Name(),
	})
	return h, nil
}

// Retrieve embeds question and returns the k closest chunks of h.
func (ix *Indexer) Retrieve(ctx context.Context, h Handle, question string, k int) ([]Match, error) {
	ctx, cancel := ix.withTimeout(ctx)
	defer cancel()

	res, err := ix.embedder.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return h.Search(ctx, res.Embedding.Values, k)
}

// Restore rebuilds a Handle from a snapshot taken by any registered backend.
func (ix *Indexer) Restore(ctx context.Context, s Snapshot) (Handle, error) {
	b, ok := ix.restore[s.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
	return b.Restore(ctx, s)
}

// Drop removes what h's backend stores for it. A nil handle is ignored.
func (ix *Indexer) Drop(ctx context.Context, h Handle) error {
	if h == nil {
		return nil
	}
	s := h.Snapshot()
	b, ok := ix.restore[s.Backend]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
	return b.Drop(ctx, s)
}

func (ix *Indexer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ix.cfg.EmbedTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, ix.cfg.EmbedTimeout)
}
