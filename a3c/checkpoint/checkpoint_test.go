package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(episode int64) SnapshotV1 {
	return SnapshotV1{
		MapName:       "drill",
		Faction:       "T",
		Seed:          42,
		GlobalEpisode: episode,
		StoreVersion:  uint64(episode * 3),
		Step:          episode * 7,
		Weights:       []float64{1, 2, 3},
		FirstMoment:   []float64{0.1, 0.2, 0.3},
		SecondMoment:  []float64{0.01, 0.02, 0.03},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), 5)
	path, err := store.Save(sampleSnapshot(250))
	require.NoError(t, err)
	assert.Equal(t, "model-000000250.ckpt.zst", filepath.Base(path))

	snap, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, formatVersion, snap.Version)
	assert.Equal(t, "drill", snap.MapName)
	assert.Equal(t, int64(250), snap.GlobalEpisode)
	assert.Equal(t, uint64(750), snap.StoreVersion)
	assert.Equal(t, []float64{1, 2, 3}, snap.Weights)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, snap.FirstMoment)
}

func TestStore_LatestPicksNewest(t *testing.T) {
	store := NewStore(t.TempDir(), 5)
	for _, ep := range []int64{250, 500, 750} {
		_, err := store.Save(sampleSnapshot(ep))
		require.NoError(t, err)
	}
	snap, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, int64(750), snap.GlobalEpisode)
}

func TestStore_PrunesBeyondRetention(t *testing.T) {
	store := NewStore(t.TempDir(), 2)
	for _, ep := range []int64{1, 2, 3, 4, 5} {
		_, err := store.Save(sampleSnapshot(ep))
		require.NoError(t, err)
	}
	paths, err := store.List()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "model-000000004.ckpt.zst", filepath.Base(paths[0]))
	assert.Equal(t, "model-000000005.ckpt.zst", filepath.Base(paths[1]))
}

func TestWriteSnapshotSurfacesWriteErrors(t *testing.T) {
	// /dev/full accepts the open but fails every write with ENOSPC, which
	// must come back through the flush/close chain instead of vanishing.
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	err := writeSnapshot("/dev/full", sampleSnapshot(1))
	assert.Error(t, err)
}

func TestStore_LatestOnEmptyDir(t *testing.T) {
	store := NewStore(t.TempDir(), 5)
	_, err := store.Latest()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_ListMissingDirIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"), 5)
	paths, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, paths)
}
