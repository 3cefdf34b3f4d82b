package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/pkg/logger"
)

// PostgresDriver dumps PostgreSQL databases via pg_dump
type PostgresDriver struct {
	binary string
}

// NewPostgresDriver creates the PostgreSQL backup driver
func NewPostgresDriver() *PostgresDriver {
	return &PostgresDriver{binary: "pg_dump"}
}

// Engine returns the engine type this driver handles
func (d *PostgresDriver) Engine() models.EngineType {
	return models.EnginePostgres
}

// Dump runs pg_dump against the target and returns the SQL dump
func (d *PostgresDriver) Dump(ctx context.Context, target Target) ([]byte, error) {
	args := []string{
		"--host=" + target.Host,
		"--port=" + strconv.Itoa(target.Port),
		"--username=" + target.Username,
		"--no-password",
		"--format=plain",
		"--clean",
		"--if-exists",
		target.Database,
	}

	cmd := exec.CommandContext(ctx, d.binary, args...)
	cmd.Env = append(cmd.Environ(), "PGPASSWORD="+target.Password)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pg_dump timed out after %s: %w", time.Since(start).Round(time.Second), ctx.Err())
		}
		return nil, fmt.Errorf("pg_dump failed: %w: %s", err, stderr.String())
	}

	logger.Debug("ENGINE: pg_dump completed", map[string]interface{}{
		"database":   target.Database,
		"size_bytes": stdout.Len(),
		"duration_s": time.Since(start).Seconds(),
	})

	return stdout.Bytes(), nil
}
