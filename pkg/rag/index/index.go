// Package index builds and queries per-session chunk similarity indexes.
package index

import (
	"context"
	"errors"
)

var (
	ErrEmptyText      = errors.New("no text to index")
	ErrUnknownBackend = errors.New("unknown index backend")
	ErrDimension      = errors.New("vector dimension mismatch")
)

// Match is one retrieved chunk.
type Match struct {
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

// Handle is a built, immutable similarity index.
type Handle interface {
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	Len() int
	Snapshot() Snapshot
}

// Snapshot is the serialisable form of a Handle. Backends that keep their
// vectors elsewhere only fill Backend and Key.
type Snapshot struct {
	Backend string      `json:"backend"`
	Key     string      `json:"key"`
	Chunks  []string    `json:"chunks,omitempty"`
	Vectors [][]float32 `json:"vectors,omitempty"`
}

// Backend stores embedded chunks and hands back a searchable Handle.
type Backend interface {
	Name() string
	Build(ctx context.Context, key string, chunks []string, vectors [][]float32) (Handle, error)
	Restore(ctx context.Context, s Snapshot) (Handle, error)
	// Drop releases whatever the backend stores for the snapshot's key.
	Drop(ctx context.Context, s Snapshot) error
}
