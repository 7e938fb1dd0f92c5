package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts the blob store holding uploaded document files.
// Keys are opaque path strings owned by the document service.
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
