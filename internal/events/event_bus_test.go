package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu     sync.Mutex
	stored []Event
}

func (s *memoryStorage) Store(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, event)
	return nil
}

func (s *memoryStorage) Query(filters EventFilters) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Event
	for _, event := range s.stored {
		if filters.DatabaseID != "" && event.DatabaseID != filters.DatabaseID {
			continue
		}
		matched = append(matched, event)
	}
	return matched, nil
}

func TestPublishAssignsIDAndTimestamp(t *testing.T) {
	storage := &memoryStorage{}
	bus := NewEventBus(storage)

	bus.Publish(Event{
		Type:       EventBackupCompleted,
		Source:     "processor",
		DatabaseID: "db-1",
		Data:       map[string]interface{}{"size_bytes": int64(1024)},
	})

	require.Len(t, storage.stored, 1)
	stored := storage.stored[0]
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())
	assert.Equal(t, EventBackupCompleted, stored.Type)
}

func TestSubscribeReceivesMatchingEvents(t *testing.T) {
	bus := NewEventBus(nil)

	received := make(chan Event, 1)
	bus.Subscribe(EventBackupFailed, func(event Event) {
		received <- event
	})

	bus.Publish(Event{Type: EventBackupCompleted, DatabaseID: "db-1"})
	bus.Publish(Event{Type: EventBackupFailed, DatabaseID: "db-2"})

	select {
	case event := <-received:
		assert.Equal(t, "db-2", event.DatabaseID)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
	assert.Empty(t, received)
}

func TestQueryDelegatesToStorage(t *testing.T) {
	storage := &memoryStorage{}
	bus := NewEventBus(storage)

	bus.Publish(Event{Type: EventJobEnqueued, DatabaseID: "db-1"})
	bus.Publish(Event{Type: EventJobEnqueued, DatabaseID: "db-2"})

	matched, err := bus.Query(EventFilters{DatabaseID: "db-1"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "db-1", matched[0].DatabaseID)
}

func TestQueryWithoutStorage(t *testing.T) {
	bus := NewEventBus(nil)
	matched, err := bus.Query(EventFilters{})
	require.NoError(t, err)
	assert.Nil(t, matched)
}
