package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "stacia/pkg/platform/audit"
	"stacia/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingStore) ListRecent(context.Context, audit.Filter) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		SessionID: "s-1",
		Action:    string(audit.EventConsentGranted),
	})
	require.NoError(t, err)

	events, err := pub.ListRecent(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventConsentGranted), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", events[0].ID.String())
	assert.Nil(t, pub.Outbox())
}

func TestPublisher_FailClosed(t *testing.T) {
	pub := NewPublisher(failingStore{}, WithAsyncBuffer(4))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventConsentWithdrawn)})
	require.Error(t, err)

	select {
	case <-pub.Outbox():
		t.Fatal("failed events must not be forwarded")
	default:
	}
}

func TestPublisher_RequiresAction(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	err := pub.Emit(context.Background(), audit.Event{SessionID: "s-1"})
	require.Error(t, err)
}

func TestPublisher_ForwardsToOutbox(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	for range 3 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			Action: string(audit.EventBusinessSelected),
		}))
	}
	require.NoError(t, pub.Close())

	var forwarded int
	for range pub.Outbox() {
		forwarded++
	}
	assert.Equal(t, 3, forwarded, "outbox should drain after close")
}

func TestPublisher_BufferFull_DropsForwardOnly(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				Action: string(audit.EventConsentGranted),
			})
		}()
	}
	wg.Wait()

	events, err := store.ListRecent(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 10, "every event is persisted even when the outbox is full")
	assert.Equal(t, int64(9), pub.Dropped())
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(2))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action: string(audit.EventConsentGranted),
	}))
	events, err := store.ListRecent(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action: string(audit.EventSessionStarted),
	}))
	after := time.Now()

	events, err := pub.ListRecent(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventSessionStarted),
		Timestamp: customTime,
	}))

	events, err := pub.ListRecent(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}
