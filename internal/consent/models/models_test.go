package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "stacia/pkg/domain"
	dErrors "stacia/pkg/domain-errors"
)

var fixedNow = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

func TestDefaultLedger(t *testing.T) {
	ledger := DefaultLedger()
	assert.Len(t, ledger, id.CategoryKeyCount)
	assert.Equal(t, 3, ActiveCount(ledger))
	assert.True(t, ledger.Granted(id.CategoryEssential))
	assert.True(t, ledger.Granted(id.CategoryPersonalization))
	assert.True(t, ledger.Granted(id.CategoryCommunication))
	assert.False(t, ledger.Granted(id.CategoryAnalytics))
}

func TestToggle(t *testing.T) {
	t.Run("essential is locked and idempotent", func(t *testing.T) {
		ledger := DefaultLedger()
		for range 3 {
			next, changed, err := Toggle(ledger, id.CategoryEssential)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.True(t, next.Granted(id.CategoryEssential))
			ledger = next
		}
		assert.Equal(t, DefaultLedger(), ledger)
	})

	t.Run("toggling twice is identity for every other key", func(t *testing.T) {
		for _, key := range id.ConsentCategoryKeys() {
			if key.IsEssential() {
				continue
			}
			start := DefaultLedger()
			once, changed, err := Toggle(start, key)
			require.NoError(t, err)
			require.True(t, changed)
			assert.NotEqual(t, start.Granted(key), once.Granted(key))

			twice, _, err := Toggle(once, key)
			require.NoError(t, err)
			assert.Equal(t, start, twice, "key %s", key)
		}
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		start := DefaultLedger()
		_, _, err := Toggle(start, id.CategoryMarketing)
		require.NoError(t, err)
		assert.False(t, start.Granted(id.CategoryMarketing))
	})

	t.Run("unknown key is an invalid key error", func(t *testing.T) {
		start := DefaultLedger()
		out, changed, err := Toggle(start, id.ConsentCategoryKey("telemetry"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidKey))
		assert.False(t, changed)
		assert.Equal(t, start, out)
	})

	t.Run("active count tracks granted values", func(t *testing.T) {
		ledger, _, err := Toggle(DefaultLedger(), id.CategoryAnalytics)
		require.NoError(t, err)
		assert.Equal(t, 4, ActiveCount(ledger))
		ledger, _, err = Toggle(ledger, id.CategoryCommunication)
		require.NoError(t, err)
		assert.Equal(t, 3, ActiveCount(ledger))
	})
}

func TestHistory(t *testing.T) {
	t.Run("append never mutates the original log", func(t *testing.T) {
		log := History{InitialEntry(fixedNow, id.BusinessBanking)}
		next := Append(log, ChangeEntry(fixedNow, "Marketing & Advertising", false, id.BusinessBanking))

		assert.Len(t, log, 1)
		require.Len(t, next, 2)
		assert.Equal(t, log[0], next[0])
		assert.Equal(t, "Marketing & Advertising consent withdrawn", next[1].Action)
		assert.Equal(t, StatusWithdrawn, next[1].Status)
	})

	t.Run("newest returns reversed copy", func(t *testing.T) {
		log := History{
			InitialEntry(fixedNow, ""),
			ChangeEntry(fixedNow.Add(time.Minute), "Analytics & Performance", true, ""),
		}
		newest := log.Newest()
		assert.Equal(t, StatusGranted, newest[0].Status)
		assert.Equal(t, StatusInitial, newest[1].Status)
		assert.Equal(t, StatusInitial, log[0].Status)
	})
}

func TestSession_ApplyToggle(t *testing.T) {
	newSession := func() *Session {
		return NewSession(id.SessionID(uuid.New()), id.BusinessBanking, fixedNow)
	}

	t.Run("new session starts with one initial entry", func(t *testing.T) {
		s := newSession()
		require.Len(t, s.History, 1)
		assert.Equal(t, StatusInitial, s.History[0].Status)
		assert.Equal(t, id.BusinessBanking, s.History[0].Business)
	})

	t.Run("granting analytics appends a granted entry", func(t *testing.T) {
		s := newSession()
		entry, err := s.ApplyToggle(id.CategoryAnalytics, "Analytics & Performance", fixedNow.Add(time.Second))
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.True(t, s.Ledger.Granted(id.CategoryAnalytics))
		assert.Equal(t, 4, ActiveCount(s.Ledger))
		require.Len(t, s.History, 2)
		assert.Contains(t, s.History[1].Action, "Analytics")
		assert.Equal(t, StatusGranted, s.History[1].Status)
		assert.Equal(t, fixedNow.Add(time.Second), s.UpdatedAt)
	})

	t.Run("essential toggle appends nothing", func(t *testing.T) {
		s := newSession()
		entry, err := s.ApplyToggle(id.CategoryEssential, "Essential Cookies", fixedNow)
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.Len(t, s.History, 1)
	})

	t.Run("business change leaves ledger and history untouched", func(t *testing.T) {
		s := newSession()
		s.SelectBusiness(id.BusinessHealthcare, fixedNow.Add(time.Hour))
		assert.Equal(t, id.BusinessHealthcare, s.Business)
		assert.Equal(t, DefaultLedger(), s.Ledger)
		assert.Len(t, s.History, 1)
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := newSession()
		c := s.Clone()
		_, err := c.ApplyToggle(id.CategoryMarketing, "Marketing & Advertising", fixedNow)
		require.NoError(t, err)
		assert.False(t, s.Ledger.Granted(id.CategoryMarketing))
		assert.Len(t, s.History, 1)
	})
}

func TestToggleNotification(t *testing.T) {
	n := ToggleNotification("Analytics & Performance", true)
	assert.Equal(t, "Consent Updated", n.Title)
	assert.Equal(t, "Analytics & Performance has been granted", n.Description)

	n = ToggleNotification("", false)
	assert.Equal(t, "Consent has been withdrawn", n.Description)
}

func TestParseRequestKind(t *testing.T) {
	kind, err := ParseRequestKind("deletion")
	require.NoError(t, err)
	assert.Equal(t, "Deletion Request Submitted", AcknowledgmentFor(kind).Title)

	_, err = ParseRequestKind("portability")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewSessionView(t *testing.T) {
	s := NewSession(id.SessionID(uuid.New()), "", fixedNow)
	view := NewSessionView(s, "", nil)

	require.Len(t, view.Rows, id.CategoryKeyCount)
	assert.Equal(t, id.CategoryEssential, view.Rows[0].Key)
	assert.True(t, view.Rows[0].Required)
	assert.Empty(t, view.Rows[0].Title)
	assert.Equal(t, 3, view.ActiveCount)
	assert.Equal(t, 8, view.Total)
}
