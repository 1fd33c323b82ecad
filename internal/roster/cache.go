package roster

import (
	"sync"

	"github.com/matchlobby/voicebridge/internal/domain"
)

// Cache holds the last-published roster per room. Entries appear on
// first publish and are overwritten on every later publish; nothing
// ever deletes them, stale rooms are simply superseded.
type Cache struct {
	mu   sync.RWMutex
	last map[domain.RoomID]domain.Roster
}

func NewCache() *Cache {
	return &Cache{last: make(map[domain.RoomID]domain.Roster)}
}

func (c *Cache) Get(room domain.RoomID) (domain.Roster, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.last[room]
	return r, ok
}

func (c *Cache) Put(room domain.RoomID, r domain.Roster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[room] = r
}
