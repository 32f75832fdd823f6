// Package redisstore keeps session snapshots in Redis so they outlive a
// restart. Turns are only serialised within one process; route a session to
// a single instance when running several.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	BackendName = "redis"
	keyPrefix   = "legal-analyzer:session:"
)

type SessionRepository struct {
	rdb      redis.UniversalClient
	restorer store.Restorer
	ttl      time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

// NewSessionRepository stores sessions as JSON snapshots. Index handles are
// rebuilt through restorer on every load. A zero ttl disables expiry.
func NewSessionRepository(rdb redis.UniversalClient, restorer store.Restorer, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, restorer: restorer, ttl: ttl}
}

func (r *SessionRepository) Backend() string { return BackendName }

func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}
	s, err := decodeSession(ctx, data, r.restorer)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan sessions: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func encodeSession(s *store.Session) ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

func decodeSession(ctx context.Context, data []byte, restorer store.Restorer) (*store.Session, error) {
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return store.FromSnapshot(ctx, snap, restorer)
}
