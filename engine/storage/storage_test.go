package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	_, ok := s.GetString(KeyGraph)
	assert.False(t, ok)

	s.SetString(KeyGraph, `{"nodes":[]}`)
	v, ok := s.GetString(KeyGraph)
	require.True(t, ok)
	assert.Equal(t, `{"nodes":[]}`, v)
	assert.NoError(t, s.Flush())
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "noded.toml")

	s, err := NewFileStorage(path)
	require.NoError(t, err)
	s.SetString(KeyGraph, `{"nodes":[{"kind":0}],"wires":[]}`)
	s.SetString(KeyStyle, "{}")
	require.NoError(t, s.Flush())

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)
	v, ok := reopened.GetString(KeyGraph)
	require.True(t, ok)
	assert.Equal(t, `{"nodes":[{"kind":0}],"wires":[]}`, v)
	_, ok = reopened.GetString(KeySettings)
	assert.False(t, ok)
}

func TestFileStorageFlushSkipsCleanState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noded.toml")
	s, err := NewFileStorage(path)
	require.NoError(t, err)

	require.NoError(t, s.Flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noded.toml")
	require.NoError(t, os.WriteFile(path, []byte("snarl = [unterminated"), 0o644))
	_, err := NewFileStorage(path)
	assert.Error(t, err)
}
