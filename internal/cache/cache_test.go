package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsOldest(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	v, ok := c.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
	assert.Equal(t, 2, c.Len())
}

func TestTieredFillsLocalFromShared(t *testing.T) {
	local, err := NewLRU(4)
	require.NoError(t, err)
	shared, err := NewLRU(4)
	require.NoError(t, err)
	ctx := context.Background()
	tiered := NewTiered(local, shared)

	shared.Set(ctx, "k", []byte("v"))
	v, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	_, ok = local.Get(ctx, "k")
	assert.True(t, ok)

	tiered.Set(ctx, "n", []byte("w"))
	_, ok = shared.Get(ctx, "n")
	assert.True(t, ok)
}

func TestRedisCacheFailsSoft(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCacheFromClient(client, time.Minute, nil)

	c.Set(context.Background(), "k", []byte("v"))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func writeStatic(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestStaticCachePreloadAndWriteOnce(t *testing.T) {
	dir := t.TempDir()
	writeStatic(t, dir, "index.html", "<h1>home</h1>")
	writeStatic(t, dir, "css/site.css", "body{}")

	c := NewStaticCache(dir, 8, nil)
	assert.Equal(t, 1, c.Preload())

	f, err := c.Load("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", f.ContentType)
	assert.Equal(t, "<h1>home</h1>", string(f.Body))

	css, err := c.Load("css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "text/css; charset=utf-8", css.ContentType)

	// later disk changes are not observed once cached
	writeStatic(t, dir, "css/site.css", "changed")
	css, err = c.Load("css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(css.Body))
}

func TestStaticCacheRejectsMissingAndEscapes(t *testing.T) {
	dir := t.TempDir()
	c := NewStaticCache(filepath.Join(dir, "public"), 8, nil)
	writeStatic(t, dir, "secret.txt", "nope")

	_, err := c.Load("missing.html")
	assert.True(t, IsNotExist(err))
	_, err = c.Load("../secret.txt")
	assert.True(t, IsNotExist(err))
	_, err = c.Load("")
	assert.True(t, IsNotExist(err))
}

func TestStaticCacheConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeStatic(t, dir, "app.js", "console.log(1)")
	c := NewStaticCache(dir, 8, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := c.Load("app.js")
			assert.NoError(t, err)
			assert.Equal(t, "console.log(1)", string(f.Body))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

func TestStaticCacheFullNeverEvicts(t *testing.T) {
	dir := t.TempDir()
	writeStatic(t, dir, "index.html", "home")
	writeStatic(t, dir, "dashboard.html", "dash")
	writeStatic(t, dir, "app.js", "v1")

	c := NewStaticCache(dir, 2, nil)
	require.Equal(t, 2, c.Preload())

	f, err := c.Load("app.js")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(f.Body))
	assert.Equal(t, 2, c.Len())

	// uncached files track the disk; cached ones keep their first write
	writeStatic(t, dir, "app.js", "v2")
	writeStatic(t, dir, "index.html", "changed")
	f, err = c.Load("app.js")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(f.Body))
	f, err = c.Load("index.html")
	require.NoError(t, err)
	assert.Equal(t, "home", string(f.Body))
}
