package main

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	consentservice "stacia/internal/consent/service"
	consentstore "stacia/internal/consent/store"
	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
)

const defaultConsentTxTimeout = 5 * time.Second

// consentRedisTx makes session read-modify-write safe across server
// instances sharing one Redis. A conflicting write aborts before anything
// is audited; fn is not replayed and the caller gets a conflict.
type consentRedisTx struct {
	store   *consentstore.RedisStore
	timeout time.Duration
}

func newConsentRedisTx(store *consentstore.RedisStore) *consentRedisTx {
	return &consentRedisTx{store: store}
}

func (t *consentRedisTx) RunInTx(ctx context.Context, sessionID id.SessionID, fn func(store consentservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultConsentTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := t.store.Watch(ctx, sessionID, func(tx *consentstore.RedisTxStore) error {
		return fn(tx)
	})
	if errors.Is(err, redis.TxFailedErr) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "consent session changed concurrently, retry the request")
	}
	return err
}
