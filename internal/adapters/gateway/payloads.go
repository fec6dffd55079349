package gateway

import (
	"encoding/json"

	"github.com/dkeye/voicegate/internal/domain"
)

type Opcode int

const (
	OpDispatch         Opcode = 0  // server: an event, named by t
	OpHeartbeat        Opcode = 1  // client: keep the session alive
	OpIdentify         Opcode = 2  // client: authenticate the session
	OpVoiceStateUpdate Opcode = 4  // client: join, move or leave a voice channel
	OpHello            Opcode = 10 // server: carries the heartbeat interval
	OpHeartbeatAck     Opcode = 11 // server: acknowledges a heartbeat
)

const (
	EventVoiceStateUpdate  = "VOICE_STATE_UPDATE"
	EventVoiceServerUpdate = "VOICE_SERVER_UPDATE"
)

// Frame is one encoded gateway message.
type Frame []byte

type Envelope struct {
	Op Opcode          `json:"op"`
	T  string          `json:"t,omitempty"`
	S  *int64          `json:"s,omitempty"`
	D  json.RawMessage `json:"d,omitempty"`
}

// VoiceStateUpdate is the outbound announce; a nil channel leaves.
type VoiceStateUpdate struct {
	GuildID   domain.GuildID    `json:"guild_id"`
	ChannelID *domain.ChannelID `json:"channel_id"`
	SelfMute  bool              `json:"self_mute"`
	SelfDeaf  bool              `json:"self_deaf"`
}

// VoiceState is the inbound state of one user in a guild.
type VoiceState struct {
	GuildID   domain.GuildID    `json:"guild_id"`
	ChannelID *domain.ChannelID `json:"channel_id"`
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id"`
	SelfMute  bool              `json:"self_mute"`
	SelfDeaf  bool              `json:"self_deaf"`
}

// VoiceServerUpdate assigns a voice server. A nil endpoint means the server
// went away and a new one will be allocated.
type VoiceServerUpdate struct {
	GuildID  domain.GuildID `json:"guild_id"`
	Token    string         `json:"token"`
	Endpoint *string        `json:"endpoint"`
}

type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type Identify struct {
	Token  string `json:"token"`
	UserID string `json:"user_id,omitempty"`
}

func encode(op Opcode, d any) (Frame, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Op: op, D: raw})
}

func channelRef(c domain.ChannelID) *domain.ChannelID {
	if c.IsNull() {
		return nil
	}
	return &c
}

func channelOf(ref *domain.ChannelID) domain.ChannelID {
	if ref == nil {
		return ""
	}
	return *ref
}
