// Package session owns conversation state: id generation, per-session
// serialisation and load/save against the configured repository.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/pkg/rag/index"
	"legal-analyzer-be/pkg/store"
)

const (
	IDLength = 32
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// placeholderID is what generated API clients send when the field is left at its example value.
	placeholderID = "string"
)

var ErrInvalidID = errors.New("invalid session id")

// IndexDropper releases the storage behind a session's index.
type IndexDropper interface {
	Drop(ctx context.Context, h index.Handle) error
}

type Option func(*Registry)

// WithIndexDropper makes Delete remove the session's indexed chunks too.
func WithIndexDropper(d IndexDropper) Option {
	return func(r *Registry) { r.dropper = d }
}

// Registry serialises turns per session id. Different sessions never block each other.
type Registry struct {
	repo    contract.SessionRepository
	dropper IndexDropper
	logger  logger.ILogger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	ch   chan struct{}
	refs int
}

func NewRegistry(repo contract.SessionRepository, log logger.ILogger, opts ...Option) *Registry {
	r := &Registry{
		repo:   repo,
		logger: log,
		now:    time.Now,
		locks:  make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewID returns IDLength characters drawn uniformly from [A-Za-z0-9].
func NewID() string {
	const maxByte = 256 - (256 % len(alphabet))
	out := make([]byte, 0, IDLength)
	buf := make([]byte, IDLength*2)
	for len(out) < IDLength {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == IDLength {
				break
			}
		}
	}
	return string(out)
}

// Resolve returns id, or a fresh id when the client did not supply a real one.
func Resolve(id string) string {
	if id == "" || id == placeholderID {
		return NewID()
	}
	return id
}

// WithSession runs fn with exclusive access to the session, creating it when
// unknown, and saves it afterwards. The session is saved even when fn fails
// so partial progress (such as a rejected upload) is kept.
func (r *Registry) WithSession(ctx context.Context, id string, fn func(ctx context.Context, s *store.Session) error) error {
	if id == "" {
		return ErrInvalidID
	}
	release, err := r.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	s, found, err := r.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !found {
		s = store.NewSession(id, r.now())
		r.logger.Info("session", "Created new session", map[string]interface{}{"session_id": id})
	}

	fnErr := fn(ctx, s)
	s.UpdatedAt = r.now()
	if err := r.repo.Save(ctx, s); err != nil {
		return errors.Join(fnErr, fmt.Errorf("save session: %w", err))
	}
	return fnErr
}

// Delete drops a session once any in-flight turn on it has finished. The
// index is dropped first so a failure leaves the session usable.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	release, err := r.acquire(ctx, id)
	if err != nil {
		return false, err
	}
	defer release()

	s, found, err := r.repo.Get(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if r.dropper != nil && s.Index != nil {
		if err := r.dropper.Drop(ctx, s.Index); err != nil {
			return false, fmt.Errorf("drop index of session %s: %w", id, err)
		}
	}
	if err := r.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	r.logger.Info("session", "Session deleted", map[string]interface{}{"session_id": id})
	return true, nil
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	return r.repo.Count(ctx)
}

func (r *Registry) Backend() string {
	return r.repo.Backend()
}

// acquire waits for the session's lock or the context, whichever comes first.
func (r *Registry) acquire(ctx context.Context, id string) (func(), error) {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sessionLock{ch: make(chan struct{}, 1)}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			r.unref(id, l)
		}, nil
	case <-ctx.Done():
		r.unref(id, l)
		return nil, ctx.Err()
	}
}

func (r *Registry) unref(id string, l *sessionLock) {
	r.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, id)
	}
	r.mu.Unlock()
}
