package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_SnapshotThenLoadRoundTrips(t *testing.T) {
	c := New(1)
	_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "example line", []string{"task"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.json")
	pm := NewPersistenceManager(c, path, 0)
	require.NoError(t, pm.Snapshot())

	c2 := New(1)
	pm2 := NewPersistenceManager(c2, path, 0)
	require.NoError(t, pm2.Load())

	assert.Equal(t, 1, c2.Len())
	got, err := c2.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "ERROR <*> failed", got.Pattern)
	assert.Equal(t, []string{"ERROR ", " failed"}, got.Fragments)
}

func TestPersistence_LoadMissingFileIsNotError(t *testing.T) {
	c := New(1)
	pm := NewPersistenceManager(c, filepath.Join(t.TempDir(), "missing.json"), 0)

	err := pm.Load()
	assert.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}
