package storage

import (
	"context"
)

// BlobStore stores and deletes backup artifacts. Paths are relative keys
// like databases/{databaseID}/{tier}/{timestamp}.sql.gz; Put returns the
// absolute location used for later deletion.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (location string, err error)
	Delete(ctx context.Context, location string) error
}
