package service

import (
	"context"
	"sync"
	"time"

	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
)

// SessionTx provides a per-session boundary for read-modify-write on the store.
type SessionTx interface {
	RunInTx(ctx context.Context, sessionID id.SessionID, fn func(store Store) error) error
}

// shardedSessionTx serialises writers of the same session using sharded
// mutexes keyed by a hash of the session ID.
const numSessionShards = 128

// defaultSessionTxTimeout is the maximum duration for a session transaction.
const defaultSessionTxTimeout = 5 * time.Second

type shardedSessionTx struct {
	shards  [numSessionShards]sync.Mutex
	store   Store
	timeout time.Duration
}

func newShardedSessionTx(store Store) *shardedSessionTx {
	return &shardedSessionTx{store: store}
}

func (t *shardedSessionTx) RunInTx(ctx context.Context, sessionID id.SessionID, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSessionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashSessionID(sessionID.String()) % numSessionShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}

// hashSessionID is FNV-1a.
func hashSessionID(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
