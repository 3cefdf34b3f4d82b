package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/pkg/logger"
	"github.com/google/uuid"
)

// SQLServerDriver backs up SQL Server databases via sqlcmd. BACKUP DATABASE
// writes server-side, so the target's backup directory must be shared with
// this process (the usual containerized deployment mounts it at tempDir).
type SQLServerDriver struct {
	binary  string
	tempDir string
}

// NewSQLServerDriver creates the SQL Server backup driver
func NewSQLServerDriver() *SQLServerDriver {
	return &SQLServerDriver{binary: "sqlcmd", tempDir: os.TempDir()}
}

// Engine returns the engine type this driver handles
func (d *SQLServerDriver) Engine() models.EngineType {
	return models.EngineSQLServer
}

// Dump issues BACKUP DATABASE on the target and reads back the .bak file
func (d *SQLServerDriver) Dump(ctx context.Context, target Target) ([]byte, error) {
	bakPath := filepath.Join(d.tempDir, fmt.Sprintf("%s-%s.bak", target.Database, uuid.New().String()))
	defer os.Remove(bakPath)

	query := fmt.Sprintf(
		"BACKUP DATABASE [%s] TO DISK = N'%s' WITH INIT, COMPRESSION, CHECKSUM",
		target.Database, bakPath,
	)

	args := []string{
		"-S", fmt.Sprintf("%s,%d", target.Host, target.Port),
		"-U", target.Username,
		"-P", target.Password,
		"-b", // exit with non-zero status on SQL errors
		"-Q", query,
	}

	cmd := exec.CommandContext(ctx, d.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sqlcmd timed out after %s: %w", time.Since(start).Round(time.Second), ctx.Err())
		}
		return nil, fmt.Errorf("sqlcmd backup failed: %w: %s", err, stderr.String())
	}

	data, err := os.ReadFile(bakPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	logger.Debug("ENGINE: sqlcmd backup completed", map[string]interface{}{
		"database":   target.Database,
		"size_bytes": len(data),
		"duration_s": time.Since(start).Seconds(),
	})

	return data, nil
}
