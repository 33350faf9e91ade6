package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

const (
	MetaOriginalFileName = "original-filename"
	MetaOriginalFileID   = "original-fileid"

	partialMatchScan = 20
)

type CatalogConfig struct {
	ListLimit   int           // files returned by ListFiles, default 100
	ListTimeout time.Duration // default 15s
	OpTimeout   time.Duration // per put/get, default 30s
}

// FileEntry is one uploaded object as shown in the file listing.
type FileEntry struct {
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
	ObjectName   string    `json:"objectName"`
	Storage      string    `json:"storage"`
	HasAnalysis  bool      `json:"hasAnalysis"`
	AnalysisID   string    `json:"analysisId,omitempty"`
	AnalysisURL  string    `json:"analysisUrl,omitempty"`
}

// AnalysisRecord is the JSON document persisted next to each upload.
type AnalysisRecord struct {
	FileName       string            `json:"fileName"`
	OriginalFileID string            `json:"originalFileId"`
	Timestamp      time.Time         `json:"timestamp"`
	Analysis       analysis.Analysis `json:"analysis"`
}

// Catalog layers the upload/analysis naming scheme over an ObjectStore.
type Catalog struct {
	store  ObjectStore
	cfg    CatalogConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewCatalog(store ObjectStore, cfg CatalogConfig, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = 15 * time.Second
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 30 * time.Second
	}
	return &Catalog{store: store, cfg: cfg, logger: logger, now: time.Now}
}

func (c *Catalog) Store() ObjectStore { return c.store }

// Ping reports whether the bucket is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	_, err := c.store.BucketExists(ctx)
	return err
}

// SaveUpload stores the raw upload under a timestamped key.
func (c *Catalog) SaveUpload(ctx context.Context, file entity.UploadedFile) (PutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := EnsureBucket(ctx, c.store, c.logger); err != nil {
		return PutResult{}, err
	}
	key := ObjectName(c.now(), file.FileName)
	res, err := c.store.Put(ctx, key, bytes.NewReader(file.Payload), int64(file.Size()), file.DeclaredContentType,
		map[string]string{MetaOriginalFileName: file.FileName})
	if err != nil {
		return PutResult{}, err
	}
	c.logger.Info("storage.upload_saved", "key", key, "size", res.Size, "driver", c.store.Driver())
	return res, nil
}

// SaveAnalysis persists the analysis of objectName as analysis-<name>.
func (c *Catalog) SaveAnalysis(ctx context.Context, objectName, fileName string, a analysis.Analysis) (PutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	rec := AnalysisRecord{FileName: fileName, OriginalFileID: objectName, Timestamp: c.now().UTC(), Analysis: a}
	body, err := json.Marshal(rec)
	if err != nil {
		return PutResult{}, fmt.Errorf("marshal analysis record: %w", err)
	}
	key := AnalysisKey(objectName)
	res, err := c.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), constants.ContentTypeJSON,
		map[string]string{MetaOriginalFileName: fileName, MetaOriginalFileID: objectName})
	if err != nil {
		return PutResult{}, err
	}
	c.logger.Info("storage.analysis_saved", "key", key, "size", res.Size)
	return res, nil
}

// ListFiles returns at most ListLimit uploads, newest first, each paired with
// its analysis object when one exists. Analysis objects are not listed.
func (c *Catalog) ListFiles(ctx context.Context) ([]FileEntry, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeoutCause(ctx, c.cfg.ListTimeout, common.ErrTimeout)
	defer cancel()

	analyses := map[string]ObjectInfo{}
	var files []FileEntry
	err := c.store.List(ctx, "", func(o ObjectInfo) bool {
		if IsAnalysisKey(o.Key) {
			analyses[o.Key] = o
			return true
		}
		name := StripTimestamp(o.Key)
		if v := o.Metadata[MetaOriginalFileName]; v != "" {
			name = v
		}
		files = append(files, FileEntry{
			Name:         name,
			OriginalName: name,
			Size:         o.Size,
			LastModified: o.LastModified,
			URL:          c.store.URL(o.Key),
			ObjectName:   o.Key,
			Storage:      c.store.Driver(),
		})
		return true
	})
	if err != nil {
		if errors.Is(context.Cause(ctx), common.ErrTimeout) {
			return nil, common.NewAppError(common.CodeTimeout,
				fmt.Sprintf("listing did not finish within %s", c.cfg.ListTimeout), common.ErrTimeout)
		}
		return nil, err
	}

	for i := range files {
		key := associatedAnalysisKey(files[i].ObjectName)
		if _, ok := analyses[key]; ok {
			files[i].HasAnalysis = true
			files[i].AnalysisID = key
			files[i].AnalysisURL = c.store.URL(key)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})
	if len(files) > c.cfg.ListLimit {
		files = files[:c.cfg.ListLimit]
	}

	c.logger.Info("storage.files_listed",
		"files", len(files),
		"analyses", len(analyses),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return files, nil
}

// FindAnalysis resolves an id to a stored analysis document. It tries the
// exact candidate keys first, then partial matches among the first listed
// analysis objects.
func (c *Catalog) FindAnalysis(ctx context.Context, id string) (string, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	candidates := AnalysisCandidates(id)
	var listed []string
	if err := c.store.List(ctx, constants.AnalysisObjectPrefix, func(o ObjectInfo) bool {
		listed = append(listed, o.Key)
		return len(listed) < partialMatchScan
	}); err != nil {
		c.logger.Warn("storage.analysis_scan_failed", "id", id, "error", err)
	}
	candidates = partialMatches(candidates, listed)
	c.logger.Debug("storage.analysis_lookup", "id", id, "candidates", candidates)

	var lastErr error
	for _, key := range candidates {
		data, _, err := ReadAll(ctx, c.store, key)
		if err == nil {
			return key, data, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			lastErr = err
			c.logger.Warn("storage.analysis_read_failed", "key", key, "error", err)
		}
	}
	if lastErr != nil {
		return "", nil, lastErr
	}
	return "", nil, common.NewAppError(common.CodeNotFound, "Analysis not found",
		fmt.Errorf("%w: analysis for %s", common.ErrNotFound, id))
}

// Open stats then opens an object for download. name is the original file
// name recorded at upload time.
func (c *Catalog) Open(ctx context.Context, key string) (rc io.ReadCloser, info ObjectInfo, name string, err error) {
	info, err = c.store.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, "", err
	}
	rc, _, err = c.store.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, "", err
	}
	name = info.Metadata[MetaOriginalFileName]
	if name == "" {
		name = StripTimestamp(key)
	}
	return rc, info, name, nil
}
