package events

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dbward/dbward/internal/models"
)

// DatabaseEventStorage stores events in PostgreSQL
type DatabaseEventStorage struct {
	db *gorm.DB
}

// NewDatabaseEventStorage creates a new database event storage
func NewDatabaseEventStorage(db *gorm.DB) *DatabaseEventStorage {
	return &DatabaseEventStorage{db: db}
}

// Store saves an event to the database
func (s *DatabaseEventStorage) Store(event Event) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	backupEvent := &models.BackupEvent{
		EventID:    event.ID,
		Type:       string(event.Type),
		Timestamp:  event.Timestamp,
		Source:     event.Source,
		DatabaseID: event.DatabaseID,
		Data:       datatypes.JSON(dataJSON),
	}

	return s.db.Create(backupEvent).Error
}

// Query retrieves events based on filters
func (s *DatabaseEventStorage) Query(filters EventFilters) ([]Event, error) {
	query := s.db.Model(&models.BackupEvent{})

	if len(filters.Types) > 0 {
		types := make([]string, len(filters.Types))
		for i, t := range filters.Types {
			types[i] = string(t)
		}
		query = query.Where("type IN ?", types)
	}

	if filters.DatabaseID != "" {
		query = query.Where("database_id = ?", filters.DatabaseID)
	}

	if !filters.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", filters.StartTime)
	}

	if !filters.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", filters.EndTime)
	}

	query = query.Order("timestamp DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	} else {
		query = query.Limit(1000) // Default limit
	}

	var backupEvents []models.BackupEvent
	if err := query.Find(&backupEvents).Error; err != nil {
		return nil, err
	}

	events := make([]Event, len(backupEvents))
	for i, be := range backupEvents {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(be.Data), &data); err != nil {
			data = make(map[string]interface{})
		}

		events[i] = Event{
			ID:         be.EventID,
			Type:       EventType(be.Type),
			Timestamp:  be.Timestamp,
			Source:     be.Source,
			DatabaseID: be.DatabaseID,
			Data:       data,
		}
	}

	return events, nil
}
