package ingest

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

type WalkConfig struct {
	Extensions []string // lowercase, without '.'; empty means BatchExtensions
	SkipHidden bool
}

type FileResult struct {
	Path string `json:"path"`
	Err  string `json:"error,omitempty"`
}

type DirStats struct {
	Scanned   uint32 `json:"scanned"`
	Matched   uint32 `json:"matched"`
	Succeeded uint32 `json:"succeeded"`
	Failed    uint32 `json:"failed"`
}

// WalkDirectory walks root and calls fn for every matching file. A failing
// file is recorded and the walk continues; only a cancelled ctx stops it.
func WalkDirectory(ctx context.Context, root string, cfg WalkConfig, fn func(ctx context.Context, path string) error) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	exts := ExtensionSet(cfg.Extensions)

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if cfg.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++

		if err := fn(ctx, path); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, FileResult{Path: path})
		stats.Succeeded++
		return nil
	})
	return results, stats, err
}
