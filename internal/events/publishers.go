package events

// PublishJobEnqueued publishes a job enqueued event
func PublishJobEnqueued(databaseID, jobID, tier, trigger string) {
	GetEventBus().Publish(Event{
		Type:       EventJobEnqueued,
		Source:     "scheduler",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"job_id":  jobID,
			"tier":    tier,
			"trigger": trigger,
		},
	})
}

// PublishJobStarted publishes a job started event
func PublishJobStarted(databaseID, jobID, tier string) {
	GetEventBus().Publish(Event{
		Type:       EventJobStarted,
		Source:     "processor",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"job_id": jobID,
			"tier":   tier,
		},
	})
}

// PublishJobRedelivered publishes a job redelivered event
func PublishJobRedelivered(databaseID, jobID string) {
	GetEventBus().Publish(Event{
		Type:       EventJobRedelivered,
		Source:     "processor",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"job_id": jobID,
		},
	})
}

// PublishBackupCompleted publishes a backup completed event
func PublishBackupCompleted(databaseID, jobID, tier, location string, sizeBytes int64, durationSeconds float64) {
	GetEventBus().Publish(Event{
		Type:       EventBackupCompleted,
		Source:     "processor",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"job_id":           jobID,
			"tier":             tier,
			"location":         location,
			"size_bytes":       sizeBytes,
			"duration_seconds": durationSeconds,
		},
	})
}

// PublishBackupFailed publishes a backup failed event
func PublishBackupFailed(databaseID, jobID, tier, errorMessage string) {
	GetEventBus().Publish(Event{
		Type:       EventBackupFailed,
		Source:     "processor",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"job_id": jobID,
			"tier":   tier,
			"error":  errorMessage,
		},
	})
}

// PublishBackupEvicted publishes a backup evicted event
func PublishBackupEvicted(databaseID, resultID, tier, location string) {
	GetEventBus().Publish(Event{
		Type:       EventBackupEvicted,
		Source:     "retention",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"result_id": resultID,
			"tier":      tier,
			"location":  location,
		},
	})
}

// PublishAlertRaised publishes an alert raised event
func PublishAlertRaised(databaseID string, consecutiveFailures int, lastError string) {
	GetEventBus().Publish(Event{
		Type:       EventAlertRaised,
		Source:     "alerting",
		DatabaseID: databaseID,
		Data: map[string]interface{}{
			"consecutive_failures": consecutiveFailures,
			"last_error":           lastError,
		},
	})
}

// PublishAlertCleared publishes an alert cleared event
func PublishAlertCleared(databaseID string) {
	GetEventBus().Publish(Event{
		Type:       EventAlertCleared,
		Source:     "alerting",
		DatabaseID: databaseID,
		Data:       map[string]interface{}{},
	})
}
