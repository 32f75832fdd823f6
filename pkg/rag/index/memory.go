package index

import (
	"context"
	"fmt"
	"math"
	"sort"
)

const MemoryBackendName = "memory"

// MemoryBackend keeps vectors in process and searches them by brute-force cosine similarity.
type MemoryBackend struct{}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Name() string { return MemoryBackendName }

func (b *MemoryBackend) Build(ctx context.Context, key string, chunks []string, vectors [][]float32) (Handle, error) {
	return newMemoryIndex(key, chunks, vectors)
}

func (b *MemoryBackend) Restore(ctx context.Context, s Snapshot) (Handle, error) {
	return newMemoryIndex(s.Key, s.Chunks, s.Vectors)
}

// Drop is a no-op; the vectors go away with the session that holds the handle.
func (b *MemoryBackend) Drop(ctx context.Context, s Snapshot) error {
	return nil
}

// MemoryIndex is immutable after construction and safe for concurrent readers.
type MemoryIndex struct {
	key     string
	chunks  []string
	vectors [][]float32
	norms   []float64
}

func newMemoryIndex(key string, chunks []string, vectors [][]float32) (*MemoryIndex, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors))
	}
	dim := len(vectors[0])
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: chunk %d has %d, want %d", ErrDimension, i, len(v), dim)
		}
		norms[i] = norm(v)
	}
	return &MemoryIndex{
		key:     key,
		chunks:  append([]string(nil), chunks...),
		vectors: vectors,
		norms:   norms,
	}, nil
}

func (m *MemoryIndex) Len() int { return len(m.chunks) }

func (m *MemoryIndex) Snapshot() Snapshot {
	return Snapshot{Backend: MemoryBackendName, Key: m.key, Chunks: m.chunks, Vectors: m.vectors}
}

func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != len(m.vectors[0]) {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimension, len(query), len(m.vectors[0]))
	}
	qn := norm(query)

	matches := make([]Match, len(m.chunks))
	for i, v := range m.vectors {
		matches[i] = Match{ChunkIndex: i, Text: m.chunks[i], Score: cosine(query, v, qn, m.norms[i])}
	}
	// Stable keeps document order among equal scores.
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func cosine(a, b []float32, na, nb float64) float32 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (na * nb))
}
