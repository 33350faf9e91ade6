package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCommandPrintsResult(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "simulated")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DETECT_LANGUAGE", "false")

	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"extract", path, "--type", "text/plain"})
	require.NoError(t, root.Execute())

	var got extractOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "note.txt", got.OriginalFileName)
	assert.Equal(t, "hello world", got.ExtractedText)
	assert.Equal(t, "direct", string(got.ExtractionMethod))
	assert.Equal(t, 11, got.Characters)
}

func TestExportRequiresRegistry(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "simulated")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_URL", "")
	t.Setenv("DB_DRIVER", "postgres")

	root := newRootCmd()
	root.SetArgs([]string{"export", "--out", filepath.Join(t.TempDir(), "x.xlsx")})
	assert.ErrorContains(t, root.Execute(), "registry database")
}

func TestExportFromSQLite(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "simulated")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "")

	out := filepath.Join(t.TempDir(), "docs.xlsx")
	root := newRootCmd()
	root.SetArgs([]string{"export", "-o", out})
	require.NoError(t, root.Execute())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestNewLoggerLevels(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(t.Context(), -4))
	assert.False(t, newLogger("warn").Enabled(t.Context(), 0))
	assert.True(t, newLogger("bogus").Enabled(t.Context(), 0))
}

func TestBatchCommandProcessesDirectory(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "simulated")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DETECT_LANGUAGE", "false")
	t.Setenv("DB_URL", "")
	t.Setenv("DB_DRIVER", "postgres")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte{0x89, 'P', 'N', 'G'}, 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"batch", dir})
	require.NoError(t, root.Execute())

	var got batchOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, uint32(2), got.Stats.Matched)
	assert.Equal(t, uint32(2), got.Stats.Succeeded)
	assert.Zero(t, got.Stats.Failed)
	require.Len(t, got.Files, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), got.Files[0].Path)
	assert.NotEmpty(t, got.Files[0].ObjectKey)
	assert.True(t, got.Files[0].Simulated)
	assert.Contains(t, got.Files[0].SkippedSteps, "analysis")
}

func TestSplitExtensions(t *testing.T) {
	assert.Equal(t, []string{"pdf", "txt"}, splitExtensions(" .PDF, txt,,"))
	assert.Nil(t, splitExtensions(""))
}
