package contract

import (
	"context"

	"legal-analyzer-be/pkg/store"
)

// SessionRepository is the backing store behind the session registry.
// Get reports found=false with a nil error for unknown ids.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*store.Session, bool, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Backend() string
}
