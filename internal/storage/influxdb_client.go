package storage

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/dbward/dbward/pkg/logger"
)

// EventData is a generic event structure that doesn't depend on internal/events
type EventData struct {
	ID         string
	Type       string
	Timestamp  time.Time
	Source     string
	DatabaseID string
	Data       map[string]interface{}
}

// EventFilters filters a time-series event lookup
type EventFilters struct {
	Types      []string
	DatabaseID string
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
}

// InfluxDBClient manages connection to InfluxDB for time-series event storage
type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	queryAPI api.QueryAPI
	org      string
	bucket   string
}

// InfluxDBConfig holds InfluxDB connection configuration
type InfluxDBConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewInfluxDBClient creates a new InfluxDB client
func NewInfluxDBClient(config InfluxDBConfig) (*InfluxDBClient, error) {
	client := influxdb2.NewClient(config.URL, config.Token)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	if health.Status != "pass" {
		healthMsg := ""
		if health.Message != nil {
			healthMsg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", healthMsg)
	}

	logger.Info("InfluxDB connection established", map[string]interface{}{
		"url":    config.URL,
		"org":    config.Org,
		"bucket": config.Bucket,
		"status": health.Status,
	})

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPI(config.Org, config.Bucket),
		queryAPI: client.QueryAPI(config.Org),
		org:      config.Org,
		bucket:   config.Bucket,
	}, nil
}

// WriteEvent writes an event to InfluxDB as a time-series point
func (c *InfluxDBClient) WriteEvent(event EventData) error {
	p := influxdb2.NewPoint(
		"backup_event",
		map[string]string{ // tags (indexed, for filtering)
			"event_id":    event.ID,
			"event_type":  event.Type,
			"source":      event.Source,
			"database_id": event.DatabaseID,
		},
		event.Data, // fields (not indexed, for values)
		event.Timestamp,
	)

	// Write point (non-blocking)
	c.writeAPI.WritePoint(p)

	return nil
}

// Flush ensures all pending writes are sent to InfluxDB
func (c *InfluxDBClient) Flush() {
	c.writeAPI.Flush()
}

// Close flushes and shuts down the client
func (c *InfluxDBClient) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}

// QueryEvents queries events from InfluxDB with filters
func (c *InfluxDBClient) QueryEvents(ctx context.Context, q EventFilters) ([]EventData, error) {
	flux := c.buildFluxQuery(q)

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("failed to query InfluxDB: %w", err)
	}
	defer result.Close()

	var events []EventData
	for result.Next() {
		record := result.Record()
		event := EventData{
			Timestamp: record.Time(),
			Data:      map[string]interface{}{record.Field(): record.Value()},
		}
		if v, ok := record.ValueByKey("event_id").(string); ok {
			event.ID = v
		}
		if v, ok := record.ValueByKey("event_type").(string); ok {
			event.Type = v
		}
		if v, ok := record.ValueByKey("source").(string); ok {
			event.Source = v
		}
		if v, ok := record.ValueByKey("database_id").(string); ok {
			event.DatabaseID = v
		}
		events = append(events, event)
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("query iteration failed: %w", result.Err())
	}

	return events, nil
}

func (c *InfluxDBClient) buildFluxQuery(q EventFilters) string {
	start := "-30d"
	if !q.StartTime.IsZero() {
		start = q.StartTime.UTC().Format(time.RFC3339)
	}

	flux := fmt.Sprintf(`from(bucket: %q) |> range(start: %s`, c.bucket, start)
	if !q.EndTime.IsZero() {
		flux += fmt.Sprintf(`, stop: %s`, q.EndTime.UTC().Format(time.RFC3339))
	}
	flux += `) |> filter(fn: (r) => r._measurement == "backup_event")`

	if q.DatabaseID != "" {
		flux += fmt.Sprintf(` |> filter(fn: (r) => r.database_id == %q)`, q.DatabaseID)
	}

	if len(q.Types) > 0 {
		flux += ` |> filter(fn: (r) =>`
		for i, t := range q.Types {
			if i > 0 {
				flux += ` or`
			}
			flux += fmt.Sprintf(` r.event_type == %q`, t)
		}
		flux += `)`
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}
	flux += fmt.Sprintf(` |> sort(columns: ["_time"], desc: true) |> limit(n: %d)`, limit)

	return flux
}
