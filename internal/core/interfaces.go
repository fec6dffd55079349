package core

import "github.com/dkeye/voicegate/internal/domain"

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Transport,Announcer

// Transport is the outbound half of the gateway session.
// Owned by the adapter; implementations must only enqueue and never block on I/O.
type Transport interface {
	// EmitStateUpdate requests an outbound voice state frame. An empty channel
	// is sent as null.
	EmitStateUpdate(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) error
	// EmitDisconnect requests an outbound leave frame for the guild.
	EmitDisconnect(guild domain.GuildID) error
}

// Announcer re-announces the full voice state of a guild.
// Connections call it after every attribute change.
type Announcer interface {
	Announce(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool)
}
