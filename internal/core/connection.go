package core

import (
	"sync"

	"github.com/dkeye/voicegate/internal/domain"
)

// ConnectionInfo is a read-only view of a Connection for APIs and listings.
type ConnectionInfo struct {
	GuildID      domain.GuildID   `json:"guild_id"`
	ChannelID    domain.ChannelID `json:"channel_id,omitempty"`
	SelfMuted    bool             `json:"self_muted"`
	SelfDeafened bool             `json:"self_deafened"`
}

// Connection is the voice attachment of one guild.
// The guild never changes; the rest is guarded by mu.
type Connection struct {
	guild     domain.GuildID
	announcer Announcer

	mu           sync.RWMutex
	channel      domain.ChannelID
	selfMuted    bool
	selfDeafened bool
	// evicted is set once the cache drops this connection; setters then stop
	// announcing so a stale handle cannot rejoin the guild.
	evicted bool
}

func NewConnection(guild domain.GuildID, channel domain.ChannelID, selfMuted, selfDeafened bool, announcer Announcer) *Connection {
	return &Connection{
		guild:        guild,
		announcer:    announcer,
		channel:      channel,
		selfMuted:    selfMuted,
		selfDeafened: selfDeafened,
	}
}

func (c *Connection) Guild() domain.GuildID { return c.guild }

func (c *Connection) Channel() domain.ChannelID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

func (c *Connection) SelfMuted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selfMuted
}

func (c *Connection) SelfDeafened() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selfDeafened
}

func (c *Connection) Snapshot() ConnectionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Connection) snapshotLocked() ConnectionInfo {
	return ConnectionInfo{
		GuildID:      c.guild,
		ChannelID:    c.channel,
		SelfMuted:    c.selfMuted,
		SelfDeafened: c.selfDeafened,
	}
}

// SetChannel moves the attachment and re-announces the full state.
func (c *Connection) SetChannel(channel domain.ChannelID) {
	c.mu.Lock()
	c.channel = channel
	info, live := c.snapshotLocked(), !c.evicted
	c.mu.Unlock()
	if live {
		c.announce(info)
	}
}

func (c *Connection) SetSelfMuted(muted bool) {
	c.mu.Lock()
	c.selfMuted = muted
	info, live := c.snapshotLocked(), !c.evicted
	c.mu.Unlock()
	if live {
		c.announce(info)
	}
}

func (c *Connection) SetSelfDeafened(deafened bool) {
	c.mu.Lock()
	c.selfDeafened = deafened
	info, live := c.snapshotLocked(), !c.evicted
	c.mu.Unlock()
	if live {
		c.announce(info)
	}
}

// Evicted reports whether the cache has dropped this connection.
func (c *Connection) Evicted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evicted
}

func (c *Connection) markEvicted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = true
}

// Apply records server-confirmed state. Unlike the setters it does not
// re-announce.
func (c *Connection) Apply(channel domain.ChannelID, selfMuted, selfDeafened bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel = channel
	c.selfMuted = selfMuted
	c.selfDeafened = selfDeafened
}

// ApplyChannel records a confirmed channel and keeps the flags.
func (c *Connection) ApplyChannel(channel domain.ChannelID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel = channel
}

// announce must be called without holding mu: the announcer may read the
// connection back.
func (c *Connection) announce(info ConnectionInfo) {
	if c.announcer == nil {
		return
	}
	c.announcer.Announce(info.GuildID, info.ChannelID, info.SelfMuted, info.SelfDeafened)
}
