package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "state_hydro.json"), Path("data", "hydro"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "state_x.json"))
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state_x.json")

	s, err := Load(path)
	require.NoError(t, err)
	s.Put("https://example.com/a/", Entry{Hash: "h1", Version: 1})
	s.Put("https://example.com/b/", Entry{Hash: "h2", Version: 2})
	require.NoError(t, s.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	e, ok := loaded.Get("https://example.com/b/")
	require.True(t, ok)
	assert.Equal(t, Entry{Hash: "h2", Version: 2}, e)

	_, ok = loaded.Get("https://example.com/missing/")
	assert.False(t, ok)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state_x.json")
	s := New(path)
	s.Put("https://example.com/a/", Entry{Hash: "h", Version: 1})
	require.NoError(t, s.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "state_x.json"))
	s.Put("https://example.com/a/", Entry{Hash: "h", Version: 1})
	require.NoError(t, s.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state_x.json", entries[0].Name())
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state_x.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse state")
}

func TestNewIgnoresExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state_x.json")
	old := New(path)
	old.Put("https://example.com/a/", Entry{Hash: "h", Version: 1})
	require.NoError(t, old.Save())

	fresh := New(path)
	assert.Zero(t, fresh.Len())
	require.NoError(t, fresh.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Len(), "fresh save replaces the old state")
}
