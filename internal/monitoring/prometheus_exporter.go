package monitoring

import (
	"fmt"
	"time"

	"github.com/dbward/dbward/internal/repository"
	"github.com/dbward/dbward/pkg/logger"
)

// PrometheusExporter collects and exports fleet-level health metrics for Prometheus.
// Per-run metrics (durations, sizes, counters) are recorded inline by the
// scheduler and processor; the exporter only refreshes gauges that need a
// periodic read of database state.
type PrometheusExporter struct {
	failureRepo    *repository.FailureRepository
	alertThreshold int
}

// NewPrometheusExporter creates a new Prometheus exporter
func NewPrometheusExporter(failureRepo *repository.FailureRepository, alertThreshold int) *PrometheusExporter {
	return &PrometheusExporter{
		failureRepo:    failureRepo,
		alertThreshold: alertThreshold,
	}
}

// CollectMetrics refreshes failure-state gauges from the database
func (e *PrometheusExporter) CollectMetrics() error {
	counters, err := e.failureRepo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to fetch failure counters: %w", err)
	}

	alerting := 0
	for _, counter := range counters {
		ConsecutiveFailures.WithLabelValues(counter.DatabaseID).Set(float64(counter.ConsecutiveFailures))
		if counter.Alerting(e.alertThreshold) {
			alerting++
		}
	}
	AlertingDatabases.Set(float64(alerting))

	logger.Debug("Prometheus metrics collected", map[string]interface{}{
		"counters": len(counters),
		"alerting": alerting,
	})

	return nil
}

// StartMetricsCollector starts a background goroutine that collects metrics periodically
func (e *PrometheusExporter) StartMetricsCollector(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		// Collect immediately on start
		if err := e.CollectMetrics(); err != nil {
			logger.Error("Failed to collect Prometheus metrics", err, nil)
		}

		for range ticker.C {
			if err := e.CollectMetrics(); err != nil {
				logger.Error("Failed to collect Prometheus metrics", err, nil)
			}
		}
	}()

	logger.Info("Prometheus metrics collector started", map[string]interface{}{
		"interval": interval.String(),
	})
}
