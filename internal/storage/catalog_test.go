package storage

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-analyzer/internal/analysis"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

// steppedClock returns start, start+1s, start+2s, ...
func steppedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func newTestCatalog(t *testing.T, cfg CatalogConfig) (*Catalog, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore("documents")
	clock := steppedClock(time.UnixMilli(1700000000000))
	store.now = clock
	c := NewCatalog(store, cfg, nil)
	c.now = clock
	return c, store
}

func upload(t *testing.T, c *Catalog, name, body string) PutResult {
	t.Helper()
	res, err := c.SaveUpload(context.Background(), entity.UploadedFile{
		FileName:            name,
		DeclaredContentType: "text/plain",
		Payload:             []byte(body),
	})
	require.NoError(t, err)
	return res
}

func TestSaveUploadCreatesBucket(t *testing.T) {
	c, store := newTestCatalog(t, CatalogConfig{})

	res := upload(t, c, "notes.txt", "hello")
	assert.Equal(t, "documents", res.Bucket)
	assert.True(t, strings.HasSuffix(res.Key, "-notes.txt"))
	assert.Equal(t, int64(5), res.Size)
	assert.Equal(t, "memory://documents/"+res.Key, res.URL)

	ok, err := store.BucketExists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := store.Stat(context.Background(), res.Key)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", info.Metadata[MetaOriginalFileName])
}

func TestSaveAndFindAnalysis(t *testing.T) {
	c, _ := newTestCatalog(t, CatalogConfig{})
	up := upload(t, c, "report.pdf", "%PDF")
	a := analysis.Simulate("hello world", "report.pdf")

	saved, err := c.SaveAnalysis(context.Background(), up.Key, "report.pdf", a)
	require.NoError(t, err)
	assert.Equal(t, "analysis-report.pdf", saved.Key)

	for _, id := range []string{up.Key, "report.pdf", "analysis-report.pdf", "report"} {
		key, data, err := c.FindAnalysis(context.Background(), id)
		require.NoError(t, err, id)
		assert.Equal(t, "analysis-report.pdf", key, id)

		var rec AnalysisRecord
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, "report.pdf", rec.FileName)
		assert.Equal(t, up.Key, rec.OriginalFileID)
		assert.Equal(t, a, rec.Analysis)
	}
}

func TestFindAnalysisNotFound(t *testing.T) {
	c, _ := newTestCatalog(t, CatalogConfig{})
	upload(t, c, "report.pdf", "x")

	_, _, err := c.FindAnalysis(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListFiles(t *testing.T) {
	c, _ := newTestCatalog(t, CatalogConfig{ListLimit: 2})
	first := upload(t, c, "a.txt", "a")
	second := upload(t, c, "b.txt", "bb")
	third := upload(t, c, "c.txt", "ccc")
	_, err := c.SaveAnalysis(context.Background(), third.Key, "c.txt", analysis.Simulate("", "c.txt"))
	require.NoError(t, err)

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, third.Key, files[0].ObjectName)
	assert.Equal(t, "c.txt", files[0].OriginalName)
	assert.True(t, files[0].HasAnalysis)
	assert.Equal(t, "analysis-c.txt", files[0].AnalysisID)
	assert.Equal(t, "memory", files[0].Storage)

	assert.Equal(t, second.Key, files[1].ObjectName)
	assert.False(t, files[1].HasAnalysis)

	for _, f := range files {
		assert.NotEqual(t, first.Key, f.ObjectName)
		assert.False(t, IsAnalysisKey(f.ObjectName))
	}
}

func TestOpen(t *testing.T) {
	c, _ := newTestCatalog(t, CatalogConfig{})
	up := upload(t, c, "notes.txt", "hello")

	rc, info, name, err := c.Open(context.Background(), up.Key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "notes.txt", name)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	_, _, _, err = c.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStoreRequiresBucket(t *testing.T) {
	store := NewMemoryStore("b")
	_, err := store.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStoreListStopsEarly(t *testing.T) {
	store := NewMemoryStore("b")
	require.NoError(t, store.MakeBucket(context.Background()))
	for _, k := range []string{"k3", "k1", "k2"} {
		_, err := store.Put(context.Background(), k, strings.NewReader(k), 2, "", nil)
		require.NoError(t, err)
	}

	var seen []string
	require.NoError(t, store.List(context.Background(), "", func(o ObjectInfo) bool {
		seen = append(seen, o.Key)
		return len(seen) < 2
	}))
	assert.Equal(t, []string{"k1", "k2"}, seen)
}
