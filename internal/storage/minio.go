package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStore is the ObjectStore backed by an S3-compatible MinIO server.
type MinIOStore struct {
	cfg    MinIOConfig
	client *minio.Client
	logger *slog.Logger
}

func NewMinIOStore(cfg MinIOConfig, logger *slog.Logger) (*MinIOStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init: %w", err)
	}
	logger.Info("storage.minio_init", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "ssl", cfg.UseSSL)
	return &MinIOStore{cfg: cfg, client: client, logger: logger}, nil
}

func (s *MinIOStore) Driver() string { return constants.StorageMinIO }

func (s *MinIOStore) Bucket() string { return s.cfg.Bucket }

func (s *MinIOStore) BucketExists(ctx context.Context) (bool, error) {
	ok, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return false, unavailable("bucket exists", err)
	}
	return ok, nil
}

func (s *MinIOStore) MakeBucket(ctx context.Context) error {
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return unavailable("make bucket", err)
	}
	return nil
}

func (s *MinIOStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, metadata map[string]string) (PutResult, error) {
	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return PutResult{}, unavailable("put "+key, err)
	}
	s.logger.Debug("storage.put", "bucket", s.cfg.Bucket, "key", key, "size", info.Size)
	return PutResult{Bucket: s.cfg.Bucket, Key: key, Size: info.Size, URL: s.URL(key)}, nil
}

func (s *MinIOStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, s.classify("get "+key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, s.classify("get "+key, err)
	}
	return obj, toObjectInfo(st), nil
}

func (s *MinIOStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	st, err := s.client.StatObject(ctx, s.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, s.classify("stat "+key, err)
	}
	return toObjectInfo(st), nil
}

func (s *MinIOStore) List(ctx context.Context, prefix string, fn func(ObjectInfo) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			return unavailable("list", obj.Err)
		}
		if !fn(toObjectInfo(obj)) {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// URL renders protocol://endpoint/bucket/key.
func (s *MinIOStore) URL(key string) string {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimSuffix(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
}

func (s *MinIOStore) classify(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return common.NewAppError(common.CodeNotFound, "object not found", fmt.Errorf("%w: %s: %v", common.ErrNotFound, op, err))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return unavailable(op, err)
}

func toObjectInfo(o minio.ObjectInfo) ObjectInfo {
	meta := make(map[string]string, len(o.UserMetadata))
	for k, v := range o.UserMetadata {
		meta[strings.ToLower(k)] = v
	}
	return ObjectInfo{
		Key:          o.Key,
		Size:         o.Size,
		LastModified: o.LastModified,
		ContentType:  o.ContentType,
		Metadata:     meta,
	}
}

func unavailable(op string, err error) error {
	return common.NewAppError(common.CodeServiceUnavailable, "object storage unavailable",
		fmt.Errorf("%w: %s: %v", common.ErrServiceUnavailable, op, err))
}
