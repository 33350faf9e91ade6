package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStore keeps objects in process memory. It backs local runs without a
// MinIO server and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	exists  bool
	objects map[string]memoryObject
	now     func() time.Time
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: map[string]memoryObject{}, now: time.Now}
}

func (s *MemoryStore) Driver() string { return constants.StorageMemory }

func (s *MemoryStore) Bucket() string { return s.bucket }

func (s *MemoryStore) BucketExists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists, nil
}

func (s *MemoryStore) MakeBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	return nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return PutResult{}, fmt.Errorf("read %s: %w", key, err)
	}
	if size >= 0 && int64(len(data)) != size {
		return PutResult{}, fmt.Errorf("put %s: read %d bytes, expected %d", key, len(data), size)
	}
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[strings.ToLower(k)] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return PutResult{}, common.NewAppError(common.CodeNotFound, "bucket not found",
			fmt.Errorf("%w: bucket %s", common.ErrNotFound, s.bucket))
	}
	s.objects[key] = memoryObject{
		data: data,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: s.now(),
			ContentType:  contentType,
			Metadata:     meta,
		},
	}
	return PutResult{Bucket: s.bucket, Key: key, Size: int64(len(data)), URL: s.URL(key)}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ObjectInfo{}, notFound(key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return ObjectInfo{}, notFound(key)
	}
	return obj.info, nil
}

// List walks keys in lexical order, like an S3 listing.
func (s *MemoryStore) List(ctx context.Context, prefix string, fn func(ObjectInfo) bool) error {
	s.mu.RLock()
	keys := slices.Sorted(maps.Keys(s.objects))
	infos := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, s.objects[k].info)
		}
	}
	s.mu.RUnlock()

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(info) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) URL(key string) string {
	return "memory://" + s.bucket + "/" + key
}

func notFound(key string) error {
	return common.NewAppError(common.CodeNotFound, "object not found", fmt.Errorf("%w: %s", common.ErrNotFound, key))
}
