package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbward/dbward/pkg/logger"
)

// EventType represents the type of event
type EventType string

const (
	// Job lifecycle events
	EventJobEnqueued  EventType = "backup.job_enqueued"
	EventJobStarted   EventType = "backup.job_started"
	EventJobRedelivered EventType = "backup.job_redelivered"

	// Backup outcome events
	EventBackupCompleted EventType = "backup.completed"
	EventBackupFailed    EventType = "backup.failed"

	// Retention events
	EventBackupEvicted EventType = "backup.evicted"

	// Alerting events
	EventAlertRaised  EventType = "alert.raised"
	EventAlertCleared EventType = "alert.cleared"
)

// Event represents a system event
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"` // e.g., "scheduler", "processor"
	DatabaseID string                 `json:"database_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

// EventHandler is a function that handles events
type EventHandler func(event Event)

// EventBus manages event publishing and subscription
type EventBus struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
	storage     EventStorage
}

// EventStorage defines the interface for storing events
type EventStorage interface {
	Store(event Event) error
	Query(filters EventFilters) ([]Event, error)
}

// EventFilters for querying events
type EventFilters struct {
	Types      []EventType
	DatabaseID string
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
}

var (
	globalBus     *EventBus
	globalBusOnce sync.Once
)

// GetEventBus returns the global event bus instance (singleton)
func GetEventBus() *EventBus {
	globalBusOnce.Do(func() {
		globalBus = NewEventBus(nil)
	})
	return globalBus
}

// SetEventStorage sets the event storage backend
func SetEventStorage(storage EventStorage) {
	bus := GetEventBus()
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.storage = storage
}

// NewEventBus creates a new event bus
func NewEventBus(storage EventStorage) *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]EventHandler),
		storage:     storage,
	}
}

// Subscribe registers a handler for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	logger.Info("Event handler subscribed", map[string]interface{}{
		"event_type": eventType,
	})
}

// Publish publishes an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	eb.mu.RLock()
	storage := eb.storage
	handlers := eb.subscribers[event.Type]
	eb.mu.RUnlock()

	// Store event if storage is configured
	if storage != nil {
		if err := storage.Store(event); err != nil {
			logger.Error("Failed to store event", err, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			})
		}
	}

	for _, handler := range handlers {
		// Run handlers in goroutines to avoid blocking
		go func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Event handler panicked", nil, map[string]interface{}{
						"event_type": event.Type,
						"panic":      r,
					})
				}
			}()
			h(event)
		}(handler)
	}

	logger.Debug("Event published", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"source":     event.Source,
	})
}

// Query retrieves events based on filters
func (eb *EventBus) Query(filters EventFilters) ([]Event, error) {
	eb.mu.RLock()
	storage := eb.storage
	eb.mu.RUnlock()

	if storage == nil {
		return nil, nil
	}
	return storage.Query(filters)
}
