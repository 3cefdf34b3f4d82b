package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for backup orchestration monitoring
var (
	// Scheduling metrics
	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_jobs_enqueued_total",
			Help: "Total number of backup jobs placed on the queue",
		},
		[]string{"database_id", "tier", "trigger"},
	)

	JobsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_jobs_suppressed_total",
			Help: "Total number of due backups skipped because a job was already in flight",
		},
		[]string{"database_id", "tier"},
	)

	// Processing metrics
	BackupsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_backups_completed_total",
			Help: "Total number of successfully completed backups",
		},
		[]string{"database_id", "tier"},
	)

	BackupsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_backups_failed_total",
			Help: "Total number of failed backups",
		},
		[]string{"database_id", "tier"},
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbward_backup_duration_seconds",
			Help:    "Wall-clock duration of backup runs from dump start to upload finish",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"database_id", "tier"},
	)

	BackupSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbward_backup_size_bytes",
			Help:    "Compressed artifact size of completed backups",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"database_id", "tier"},
	)

	// Retention metrics
	RetentionDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_retention_deleted_total",
			Help: "Total number of backups evicted by retention",
		},
		[]string{"database_id", "tier"},
	)

	// Health metrics
	ConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dbward_consecutive_failures",
			Help: "Current consecutive failure count per database",
		},
		[]string{"database_id"},
	)

	AlertingDatabases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbward_alerting_databases",
			Help: "Number of databases at or above the alert threshold",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbward_queue_depth",
			Help: "Number of jobs waiting on the backup queue",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbward_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbward_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordJobEnqueued increments the enqueue counter
func RecordJobEnqueued(databaseID, tier, trigger string) {
	JobsEnqueuedTotal.WithLabelValues(databaseID, tier, trigger).Inc()
}

// RecordJobSuppressed increments the suppression counter
func RecordJobSuppressed(databaseID, tier string) {
	JobsSuppressedTotal.WithLabelValues(databaseID, tier).Inc()
}

// RecordBackupCompleted records a successful backup run
func RecordBackupCompleted(databaseID, tier string, sizeBytes int64, durationSeconds float64) {
	BackupsCompletedTotal.WithLabelValues(databaseID, tier).Inc()
	BackupDuration.WithLabelValues(databaseID, tier).Observe(durationSeconds)
	BackupSizeBytes.WithLabelValues(databaseID, tier).Observe(float64(sizeBytes))
}

// RecordBackupFailed records a failed backup run
func RecordBackupFailed(databaseID, tier string, durationSeconds float64) {
	BackupsFailedTotal.WithLabelValues(databaseID, tier).Inc()
	BackupDuration.WithLabelValues(databaseID, tier).Observe(durationSeconds)
}

// RecordRetentionDeleted increments the eviction counter
func RecordRetentionDeleted(databaseID, tier string) {
	RetentionDeletedTotal.WithLabelValues(databaseID, tier).Inc()
}

// RecordAPIRequest increments the API request counter and records duration
func RecordAPIRequest(method, endpoint, status string, durationSeconds float64) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
