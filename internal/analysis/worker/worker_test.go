package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacia/internal/analysis/models"
	"stacia/internal/analysis/service"
	"stacia/internal/analysis/store"
)

type countingTicker struct {
	mu    sync.Mutex
	times []time.Time
	err   error
}

func (c *countingTicker) Tick(_ context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.times = append(c.times, now)
	return 0, c.err
}

func (c *countingTicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.times)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerForwardsTicks(t *testing.T) {
	ticks := make(chan time.Time)
	svc := &countingTicker{err: errors.New("transient")}
	w := New(svc, time.Hour, WithTickSource(ticks), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ticks <- base.Add(time.Duration(i) * time.Second)
	}
	close(ticks)

	require.NoError(t, <-done)
	assert.Equal(t, 3, svc.count(), "errors do not stop the loop")
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := New(&countingTicker{}, time.Hour, WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorkerDrivesRunToCompletion(t *testing.T) {
	ctx := context.Background()
	runs := store.NewInMemory()
	svc := service.New(runs, service.WithLogger(quietLogger()))
	run, err := svc.Start(ctx)
	require.NoError(t, err)

	ticks := make(chan time.Time)
	w := New(svc, time.Hour, WithTickSource(ticks), WithLogger(quietLogger()))
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 1; i <= 10; i++ {
		ticks <- run.StartedAt.Add(time.Duration(i) * 200 * time.Millisecond)
	}
	close(ticks)
	require.NoError(t, <-done)

	got, err := svc.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got.State.Status)
	assert.Len(t, got.State.Findings, 5)
}
