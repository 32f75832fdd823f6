package memory

import (
	"context"
	"time"

	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const BackendName = "memory"

type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

// NewSessionRepository keeps sessions in process. A ttl of zero keeps them
// for the lifetime of the process.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	return &SessionRepository{
		cache: cache.New(expiration, 10*time.Minute),
		ttl:   expiration,
	}
}

func (r *SessionRepository) Backend() string { return BackendName }

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*store.Session), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	return r.cache.ItemCount(), nil
}
