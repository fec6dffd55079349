package gateway

import (
	"encoding/json"

	"github.com/dkeye/voicegate/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Updater receives handshake confirmations from the gateway.
type Updater interface {
	Update(guild domain.GuildID, channel domain.ChannelID)
	Reconnect(guild domain.GuildID, channel domain.ChannelID) error
	Requeue() int
}

// Dispatcher turns voice events for the client's own user into Updater calls.
// Events are handled one at a time, in the order the gateway delivers them.
type Dispatcher struct {
	userID   string
	updater  Updater
	sessions *VoiceSessions
	logger   zerolog.Logger
}

func NewDispatcher(userID string, updater Updater, sessions *VoiceSessions) *Dispatcher {
	return &Dispatcher{
		userID:   userID,
		updater:  updater,
		sessions: sessions,
		logger:   log.With().Str("module", "gateway.dispatch").Logger(),
	}
}

func (d *Dispatcher) Handle(env Envelope) {
	switch env.T {
	case EventVoiceStateUpdate:
		var vs VoiceState
		if err := json.Unmarshal(env.D, &vs); err != nil {
			d.logger.Error().Err(err).Msg("bad voice state payload")
			return
		}
		d.handleState(vs)
	case EventVoiceServerUpdate:
		var su VoiceServerUpdate
		if err := json.Unmarshal(env.D, &su); err != nil {
			d.logger.Error().Err(err).Msg("bad voice server payload")
			return
		}
		d.handleServer(su)
	default:
		d.logger.Debug().Str("event", env.T).Msg("event ignored")
	}
}

func (d *Dispatcher) handleState(vs VoiceState) {
	if vs.UserID != d.userID {
		return
	}
	if err := vs.GuildID.Validate(); err != nil {
		d.logger.Warn().Err(err).Msg("voice state without guild")
		return
	}
	channel := channelOf(vs.ChannelID)
	d.sessions.UpdateState(vs.GuildID, vs.SessionID, channel)
	d.logger.Debug().Str("guild", string(vs.GuildID)).Str("channel", channel.String()).Msg("self voice state")
	d.updater.Update(vs.GuildID, channel)
}

func (d *Dispatcher) handleServer(su VoiceServerUpdate) {
	if err := su.GuildID.Validate(); err != nil {
		d.logger.Warn().Err(err).Msg("voice server update without guild")
		return
	}
	if su.Endpoint == nil {
		d.sessions.ClearServer(su.GuildID)
		d.logger.Info().Str("guild", string(su.GuildID)).Msg("voice server gone, reconnecting")
		if err := d.updater.Reconnect(su.GuildID, ""); err != nil {
			d.logger.Warn().Err(err).Str("guild", string(su.GuildID)).Msg("reconnect rejected")
		}
		return
	}

	d.sessions.UpdateServer(su.GuildID, su.Token, *su.Endpoint)
	vs, ok := d.sessions.Get(su.GuildID)
	if !ok || vs.ChannelID.IsNull() {
		// The state echo always comes first; without it there is nothing to confirm.
		d.logger.Debug().Str("guild", string(su.GuildID)).Msg("server update before voice state")
		return
	}
	if vs.Ready() {
		d.logger.Info().Str("guild", string(su.GuildID)).Str("endpoint", vs.Endpoint).Msg("voice session ready")
	}
	d.updater.Update(su.GuildID, vs.ChannelID)
}
