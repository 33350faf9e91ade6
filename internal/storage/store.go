package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"lastModified"`
	ContentType  string            `json:"contentType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PutResult is what a successful Put reports back.
type PutResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"objectName"`
	Size   int64  `json:"size"`
	URL    string `json:"url"`
}

// ObjectStore is a single-bucket blob store.
type ObjectStore interface {
	Driver() string
	Bucket() string
	BucketExists(ctx context.Context) (bool, error)
	MakeBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (PutResult, error)
	// Get returns ErrNotFound (wrapped) for a missing key.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List calls fn for each object under prefix until fn returns false.
	List(ctx context.Context, prefix string, fn func(ObjectInfo) bool) error
	URL(key string) string
}

// EnsureBucket creates the store's bucket if it doesn't exist.
func EnsureBucket(ctx context.Context, store ObjectStore, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	exists, err := store.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", store.Bucket(), err)
	}
	if exists {
		logger.Debug("storage.bucket_exists", "bucket", store.Bucket())
		return nil
	}
	if err := store.MakeBucket(ctx); err != nil {
		return fmt.Errorf("create bucket %s: %w", store.Bucket(), err)
	}
	logger.Info("storage.bucket_created", "bucket", store.Bucket(), "driver", store.Driver())
	return nil
}

// ReadAll fetches an object fully into memory.
func ReadAll(ctx context.Context, store ObjectStore, key string) ([]byte, ObjectInfo, error) {
	rc, info, err := store.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, info, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, info, nil
}
