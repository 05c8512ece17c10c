package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
	"stacia/pkg/platform/sentinel"
)

const sessionKeyPrefix = "stacia:consent:session:"

// DefaultSessionTTL applies when RedisStore is built without WithTTL.
const DefaultSessionTTL = 24 * time.Hour

// RedisStore persists sessions as JSON documents that expire after the TTL.
// Every write refreshes the expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultSessionTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	created, err := s.client.SetNX(ctx, sessionKey(session.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Update(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	updated, err := s.client.SetXX(ctx, sessionKey(session.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !updated {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	removed, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Watch runs fn with a store bound to a WATCH on the session key. Writes
// made through it are applied with MULTI/EXEC and fail with
// redis.TxFailedErr if another client changed the session meanwhile.
func (s *RedisStore) Watch(ctx context.Context, sessionID id.SessionID, fn func(store *RedisTxStore) error) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		return fn(&RedisTxStore{tx: tx, ttl: s.ttl})
	}, sessionKey(sessionID))
}

// RedisTxStore is the view of RedisStore inside Watch.
type RedisTxStore struct {
	tx  *redis.Tx
	ttl time.Duration
}

func (t *RedisTxStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	var created *redis.BoolCmd
	_, err = t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, sessionKey(session.ID), payload, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created.Val() {
		return sentinel.ErrConflict
	}
	return nil
}

func (t *RedisTxStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	payload, err := t.tx.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (t *RedisTxStore) Update(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	var updated *redis.BoolCmd
	_, err = t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		updated = pipe.SetXX(ctx, sessionKey(session.ID), payload, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !updated.Val() {
		return sentinel.ErrNotFound
	}
	return nil
}

func (t *RedisTxStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	var removed *redis.IntCmd
	_, err := t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, sessionKey(sessionID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed.Val() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
