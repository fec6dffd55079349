package core

import (
	"sort"
	"sync"

	"github.com/dkeye/voicegate/internal/domain"
	"github.com/rs/zerolog/log"
)

// ConnectionCache is a threadsafe in-memory guild -> Connection map.
// It survives transport reconnects and is rebuilt from scratch on restart.
type ConnectionCache struct {
	mu      sync.RWMutex
	byGuild map[domain.GuildID]*Connection
}

func NewConnectionCache() *ConnectionCache {
	return &ConnectionCache{
		byGuild: make(map[domain.GuildID]*Connection),
	}
}

func (c *ConnectionCache) Get(guild domain.GuildID) (*Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.byGuild[guild]
	return conn, ok
}

// Put upserts conn under its own guild, so there is never more than one
// connection per guild.
func (c *ConnectionCache) Put(conn *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.byGuild[conn.Guild()]; ok && old != conn {
		old.markEvicted()
	}
	c.byGuild[conn.Guild()] = conn
	log.Debug().Str("module", "core.cache").Str("guild", string(conn.Guild())).Msg("connection stored")
}

func (c *ConnectionCache) Remove(guild domain.GuildID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.byGuild[guild]
	delete(c.byGuild, guild)
	if ok {
		conn.markEvicted()
		log.Debug().Str("module", "core.cache").Str("guild", string(guild)).Msg("connection evicted")
	}
	return ok
}

func (c *ConnectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byGuild)
}

// List returns a consistent snapshot of every connection, ordered by guild.
func (c *ConnectionCache) List() []ConnectionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ConnectionInfo, 0, len(c.byGuild))
	for _, conn := range c.byGuild {
		out = append(out, conn.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

// View runs fn under the shared lock. fn must not modify the map.
func (c *ConnectionCache) View(fn func(map[domain.GuildID]*Connection)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.byGuild)
}

// Update runs fn under the exclusive lock. The lock is released even if fn panics.
func (c *ConnectionCache) Update(fn func(map[domain.GuildID]*Connection)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.byGuild)
}
