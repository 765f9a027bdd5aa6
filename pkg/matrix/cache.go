package matrix

import (
	"encoding/json"
	"os"
	"sync"
)

// RoomCache is a room-alias -> room-id map snapshotted to disk as JSON,
// replacing the original's pickled state.pickle cache (spec §9's
// "persistent room cache") with a documented, language-neutral format.
type RoomCache struct {
	mu    sync.Mutex
	path  string
	rooms map[string]string
}

// LoadRoomCache reads the JSON snapshot at path, if any, and returns a
// RoomCache backed by it. A missing file is not an error: it just starts
// empty.
func LoadRoomCache(path string) (*RoomCache, error) {
	c := &RoomCache{path: path, rooms: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c.rooms); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RoomCache) Lookup(alias string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	roomID, ok := c.rooms[alias]
	return roomID, ok
}

// Store records alias -> roomID and persists the snapshot. A failed
// persist is returned as an error, which Client logs without failing the
// Send; the in-memory entry still takes effect for the rest of this
// process's life.
func (c *RoomCache) Store(alias, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[alias] = roomID
	return c.persistLocked()
}

func (c *RoomCache) persistLocked() error {
	if c.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(c.rooms, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
