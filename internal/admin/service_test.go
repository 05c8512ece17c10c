package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacia/internal/admin/types"
	dErrors "stacia/pkg/domain-errors"
	audit "stacia/pkg/platform/audit"
)

type stubReader struct {
	limit   int
	actions []string
	err     error
}

func (r *stubReader) ListRecent(_ context.Context, limit int, actions []string) ([]*types.AuditEntry, error) {
	r.limit = limit
	r.actions = actions
	return []*types.AuditEntry{}, r.err
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, audit.Event) error {
	return errors.New("audit store down")
}

func TestListAuditLimits(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses the default", limit: 0, want: DefaultAuditLimit},
		{name: "within bounds", limit: 20, want: 20},
		{name: "clamped to max", limit: 10_000, want: MaxAuditLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{}
			_, err := NewService(reader).ListAudit(context.Background(), tt.limit, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reader.limit)
		})
	}
}

func TestListAuditFailClosed(t *testing.T) {
	reader := &stubReader{}
	_, err := NewService(reader, WithAuditPublisher(failingPublisher{})).ListAudit(context.Background(), 5, nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Zero(t, reader.limit, "nothing is read when the access cannot be recorded")
}

func TestListAuditReaderError(t *testing.T) {
	_, err := NewService(&stubReader{err: errors.New("boom")}).ListAudit(context.Background(), 5, nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
