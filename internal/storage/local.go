package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dbward/dbward/pkg/logger"
)

// LocalStore keeps backup artifacts on the local filesystem. Fallback and
// development mode; production deployments use SFTP or S3.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a filesystem blob store rooted at basePath
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Put writes an artifact under the base path
func (s *LocalStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	logger.Debug("STORAGE: Artifact written locally", map[string]interface{}{
		"path":       fullPath,
		"size_bytes": len(data),
	})

	return fullPath, nil
}

// Delete removes an artifact; a missing file is not an error
func (s *LocalStore) Delete(ctx context.Context, location string) error {
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
