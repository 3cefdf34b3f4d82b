package engine

import (
	"context"
	"fmt"

	"github.com/dbward/dbward/internal/models"
)

// Target carries the connection parameters for one dump invocation
type Target struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// Driver produces a logical backup of one database. One implementation
// exists per engine type; selection happens in the Registry so the
// processor never branches on engine strings.
type Driver interface {
	Engine() models.EngineType
	Dump(ctx context.Context, target Target) ([]byte, error)
}

// Registry selects a Driver by engine type
type Registry struct {
	drivers map[models.EngineType]Driver
}

// NewRegistry creates a driver registry from the given drivers
func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{drivers: make(map[models.EngineType]Driver)}
	for _, d := range drivers {
		r.drivers[d.Engine()] = d
	}
	return r
}

// ForEngine returns the driver for the given engine type
func (r *Registry) ForEngine(engine models.EngineType) (Driver, error) {
	d, ok := r.drivers[engine]
	if !ok {
		return nil, fmt.Errorf("no backup driver for engine type %q", engine)
	}
	return d, nil
}

// DefaultRegistry returns a registry with all built-in drivers
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewMySQLDriver(),
		NewPostgresDriver(),
		NewSQLServerDriver(),
	)
}
