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

// MySQLDriver dumps MySQL and MariaDB databases via mysqldump
type MySQLDriver struct {
	binary string
}

// NewMySQLDriver creates the MySQL backup driver
func NewMySQLDriver() *MySQLDriver {
	return &MySQLDriver{binary: "mysqldump"}
}

// Engine returns the engine type this driver handles
func (d *MySQLDriver) Engine() models.EngineType {
	return models.EngineMySQL
}

// Dump runs mysqldump against the target and returns the SQL dump
func (d *MySQLDriver) Dump(ctx context.Context, target Target) ([]byte, error) {
	args := []string{
		"--host=" + target.Host,
		"--port=" + strconv.Itoa(target.Port),
		"--user=" + target.Username,
		"--single-transaction",
		"--routines",
		"--triggers",
		"--skip-lock-tables",
		target.Database,
	}

	cmd := exec.CommandContext(ctx, d.binary, args...)
	// Password via env keeps it out of the process list
	cmd.Env = append(cmd.Environ(), "MYSQL_PWD="+target.Password)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("mysqldump timed out after %s: %w", time.Since(start).Round(time.Second), ctx.Err())
		}
		return nil, fmt.Errorf("mysqldump failed: %w: %s", err, stderr.String())
	}

	logger.Debug("ENGINE: mysqldump completed", map[string]interface{}{
		"database":   target.Database,
		"size_bytes": stdout.Len(),
		"duration_s": time.Since(start).Seconds(),
	})

	return stdout.Bytes(), nil
}
