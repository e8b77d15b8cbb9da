package domain

import "context"

// FileStore abstracts avatar byte storage. The default implementation writes
// to a local uploads directory; the S3 implementation targets any
// S3-compatible object store.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
