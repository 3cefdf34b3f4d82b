package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertingFeedThreshold(t *testing.T) {
	store := newMemStore()
	alerting := NewAlertingService(store, 2)

	require.NoError(t, store.RecordFailure("db-1", "connection refused"))
	feed, err := alerting.Feed()
	require.NoError(t, err)
	assert.Empty(t, feed, "one failure stays below the threshold")

	require.NoError(t, store.RecordFailure("db-1", "connection refused"))
	feed, err = alerting.Feed()
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "db-1", feed[0].DatabaseID)
	assert.Equal(t, 2, feed[0].ConsecutiveFailures)
}

func TestAlertingFeedClearsOnReset(t *testing.T) {
	store := newMemStore()
	alerting := NewAlertingService(store, 2)

	require.NoError(t, store.RecordFailure("db-1", "timeout"))
	require.NoError(t, store.RecordFailure("db-1", "timeout"))
	require.NoError(t, store.Reset("db-1"))

	feed, err := alerting.Feed()
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestAlertingStatus(t *testing.T) {
	store := newMemStore()
	alerting := NewAlertingService(store, 2)

	// Unknown database reads as zero failures, not an error
	counter, isAlerting, err := alerting.Status("db-9")
	require.NoError(t, err)
	assert.Equal(t, 0, counter.ConsecutiveFailures)
	assert.False(t, isAlerting)

	require.NoError(t, store.RecordFailure("db-9", "disk full"))
	require.NoError(t, store.RecordFailure("db-9", "disk full"))

	counter, isAlerting, err = alerting.Status("db-9")
	require.NoError(t, err)
	assert.Equal(t, 2, counter.ConsecutiveFailures)
	assert.Equal(t, "disk full", counter.LastError)
	assert.True(t, isAlerting)
}
