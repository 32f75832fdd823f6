// Package embeddingtest provides a deterministic EmbeddingProvider for tests.
package embeddingtest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"

	"legal-analyzer-be/pkg/embedding"
)

// Provider hashes text into a unit vector. Identical text yields identical vectors.
type Provider struct {
	Dim   int
	Err   error
	calls atomic.Int64
}

func New(dim int) *Provider {
	if dim <= 0 {
		dim = 32
	}
	return &Provider{Dim: dim}
}

func (p *Provider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.calls.Add(1)
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: Vector(text, p.Dim)},
	}, nil
}

// Calls reports how many texts were embedded.
func (p *Provider) Calls() int {
	return int(p.calls.Load())
}

func Vector(text string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(text)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return embedding.NormalizeVector(vec)
}
