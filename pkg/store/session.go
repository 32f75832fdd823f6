// Package store holds the per-session conversation state.
package store

import (
	"context"
	"fmt"
	"time"

	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/rag/index"
)

// Session is the state of one conversation. It is only mutated while the
// registry holds the session's lock.
type Session struct {
	ID                string
	History           []llm.Message
	DocumentProcessed bool
	Index             index.Handle
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Snapshot is the JSON form of a Session used by out-of-process stores.
type Snapshot struct {
	ID                string          `json:"id"`
	History           []llm.Message   `json:"history"`
	DocumentProcessed bool            `json:"document_processed"`
	Index             *index.Snapshot `json:"index,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:                s.ID,
		History:           s.History,
		DocumentProcessed: s.DocumentProcessed,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Index != nil {
		is := s.Index.Snapshot()
		snap.Index = &is
	}
	return snap
}

// Restorer turns an index snapshot back into a searchable handle.
type Restorer interface {
	Restore(ctx context.Context, s index.Snapshot) (index.Handle, error)
}

// FromSnapshot rebuilds a Session, restoring its index through r.
func FromSnapshot(ctx context.Context, snap Snapshot, r Restorer) (*Session, error) {
	s := &Session{
		ID:                snap.ID,
		History:           snap.History,
		DocumentProcessed: snap.DocumentProcessed,
		CreatedAt:         snap.CreatedAt,
		UpdatedAt:         snap.UpdatedAt,
	}
	if snap.Index != nil {
		h, err := r.Restore(ctx, *snap.Index)
		if err != nil {
			return nil, fmt.Errorf("restore index of session %s: %w", snap.ID, err)
		}
		s.Index = h
	}
	return s, nil
}
