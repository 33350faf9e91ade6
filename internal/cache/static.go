package cache

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/doc-analyzer/constants"
)

// StaticFile is a cached static asset.
type StaticFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Preloaded are read into the static cache at startup.
var Preloaded = []string{"index.html", "dashboard.html"}

// StaticCache serves a small set of static files from memory. Entries are
// written once per key and never evicted; concurrent loads of the same file
// keep the first. Once max entries are held, further files are read from
// disk on every request.
type StaticCache struct {
	root    string
	max     int
	mu      sync.RWMutex
	entries map[string]StaticFile
	logger  *slog.Logger
}

func NewStaticCache(root string, max int, logger *slog.Logger) *StaticCache {
	if logger == nil {
		logger = slog.Default()
	}
	if max < len(Preloaded) {
		max = 64
	}
	return &StaticCache{root: root, max: max, entries: make(map[string]StaticFile), logger: logger}
}

// Preload reads the preloaded set. Missing files are logged and skipped.
func (c *StaticCache) Preload() int {
	n := 0
	for _, name := range Preloaded {
		if _, err := c.Load(name); err != nil {
			c.logger.Warn("static.preload_failed", "file", name, "error", err)
			continue
		}
		n++
	}
	c.logger.Info("static.preloaded", "files", n, "root", c.root)
	return n
}

// Load returns name from the cache, reading it from disk on a miss. Names
// that escape the root return fs.ErrNotExist.
func (c *StaticCache) Load(name string) (StaticFile, error) {
	clean, err := cleanName(name)
	if err != nil {
		return StaticFile{}, err
	}
	c.mu.RLock()
	f, ok := c.entries[clean]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	body, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(clean)))
	if err != nil {
		return StaticFile{}, err
	}
	f = StaticFile{Name: clean, ContentType: contentTypeFor(clean), Body: body}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[clean]; ok {
		return existing, nil
	}
	if len(c.entries) >= c.max {
		c.logger.Debug("static.cache_full", "file", clean, "entries", len(c.entries))
		return f, nil
	}
	c.entries[clean] = f
	c.logger.Debug("static.cached", "file", clean, "bytes", len(body))
	return f, nil
}

func (c *StaticCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cleanName(name string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fs.ErrNotExist
	}
	return clean, nil
}

func contentTypeFor(name string) string {
	if ct, ok := constants.StaticContentTypes[constants.NormalizeExt(path.Ext(name))]; ok {
		return ct
	}
	return constants.ContentTypeOctetStream
}

// IsNotExist reports whether err means the static file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
