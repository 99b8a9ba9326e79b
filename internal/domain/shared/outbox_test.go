package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(t *testing.T) *OutboxEntry {
	t.Helper()
	tenantID := uuid.New()
	event := NewBaseDomainEvent("DocumentSubmitted", "Document", uuid.New(), tenantID)
	return NewOutboxEntry(tenantID, &event, []byte(`{"k":"v"}`))
}

func TestNewOutboxEntry(t *testing.T) {
	entry := newTestEntry(t)

	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, "DocumentSubmitted", entry.EventType)
	assert.Equal(t, 1, entry.EventVersion)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
	assert.Nil(t, entry.NextRetryAt)
	assert.Nil(t, entry.ProcessedAt)
}

func TestNewOutboxEntry_CarriesSchemaVersion(t *testing.T) {
	tenantID := uuid.New()
	event := NewVersionedBaseDomainEvent("DocumentPosted", "Document", uuid.New(), tenantID, 3)
	entry := NewOutboxEntry(tenantID, &event, nil)

	assert.Equal(t, 3, entry.EventVersion)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	entry := newTestEntry(t)

	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	// Processing entries cannot be claimed twice
	err := entry.MarkProcessing()
	assert.Error(t, err)

	entry.MarkSent()
	err = entry.MarkProcessing()
	assert.Error(t, err)
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := newTestEntry(t)
	require.NoError(t, entry.MarkProcessing())

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *entry.ProcessedAt, time.Second)
}

func TestOutboxEntry_MarkFailed_SchedulesBackoff(t *testing.T) {
	entry := newTestEntry(t)

	entry.MarkFailed("connection refused")

	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, "connection refused", entry.LastError)
	require.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.CanRetry())

	// Backoff doubles per attempt: second failure schedules ~2s out
	first := *entry.NextRetryAt
	entry.MarkFailed("still down")
	require.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.NextRetryAt.After(first))
}

func TestOutboxEntry_MarkFailed_BackoffIsCapped(t *testing.T) {
	entry := newTestEntry(t)
	entry.MaxRetries = 64

	for i := 0; i < 30; i++ {
		entry.MarkFailed("down")
	}

	require.NotNil(t, entry.NextRetryAt)
	assert.LessOrEqual(t, time.Until(*entry.NextRetryAt), MaxBackoff+time.Second)
}

func TestOutboxEntry_MarkFailed_DeadAfterMaxRetries(t *testing.T) {
	entry := newTestEntry(t)

	for i := 0; i < DefaultMaxRetries; i++ {
		entry.MarkFailed("handler error")
	}

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())
	assert.Nil(t, entry.NextRetryAt)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	entry := newTestEntry(t)

	// Only dead entries can be reset
	err := entry.ResetForRetry()
	assert.Error(t, err)

	for i := 0; i < DefaultMaxRetries; i++ {
		entry.MarkFailed("handler error")
	}
	require.True(t, entry.IsDead())

	require.NoError(t, entry.ResetForRetry())
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Empty(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
}
