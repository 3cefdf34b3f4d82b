package service

import (
	"fmt"

	"github.com/dbward/dbward/internal/models"
)

// AlertingService exposes the failure-derived alerting feed. The feed is
// purely a read over FailureCounter state; counters are maintained by the
// processor and this service never writes them.
type AlertingService struct {
	failures  FailureStore
	threshold int
}

// NewAlertingService creates a new alerting service
func NewAlertingService(failures FailureStore, threshold int) *AlertingService {
	return &AlertingService{
		failures:  failures,
		threshold: threshold,
	}
}

// Threshold returns the consecutive-failure count at which a database alerts
func (s *AlertingService) Threshold() int {
	return s.threshold
}

// Feed returns all databases currently at or above the alert threshold
func (s *AlertingService) Feed() ([]models.FailureCounter, error) {
	counters, err := s.failures.FindAlerting(s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerting feed: %w", err)
	}
	return counters, nil
}

// Status returns the failure state of a single database
func (s *AlertingService) Status(databaseID string) (*models.FailureCounter, bool, error) {
	counter, err := s.failures.Get(databaseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load failure counter: %w", err)
	}
	return counter, counter.Alerting(s.threshold), nil
}
