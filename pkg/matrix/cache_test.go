package matrix

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCachePersistsAcrossLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	c, err := LoadRoomCache(path)
	require.NoError(t, err)
	_, ok := c.Lookup("alerts")
	assert.False(t, ok)

	require.NoError(t, c.Store("alerts", "!abc123:example.org"))

	reloaded, err := LoadRoomCache(path)
	require.NoError(t, err)
	roomID, ok := reloaded.Lookup("alerts")
	require.True(t, ok)
	assert.Equal(t, "!abc123:example.org", roomID)
}

func TestLoadRoomCacheMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	c, err := LoadRoomCache(path)
	require.NoError(t, err)
	_, ok := c.Lookup("anything")
	assert.False(t, ok)
}
