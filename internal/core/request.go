package core

import (
	"fmt"
	"time"

	"github.com/dkeye/voicegate/internal/domain"
	"github.com/google/uuid"
)

// RequestInfo is a read-only view of a pending Request.
type RequestInfo struct {
	ID           uuid.UUID        `json:"id"`
	GuildID      domain.GuildID   `json:"guild_id"`
	ChannelID    domain.ChannelID `json:"channel_id,omitempty"`
	Stage        domain.Stage     `json:"stage"`
	SelfMuted    bool             `json:"self_muted"`
	SelfDeafened bool             `json:"self_deafened"`
	NextAttempt  time.Time        `json:"next_attempt"`
	Attempts     int              `json:"attempts"`
}

// Request is the desired transition of one guild. It holds state only;
// the controller decides which combinations are legal.
type Request struct {
	id    uuid.UUID
	guild domain.GuildID

	channel      domain.ChannelID
	stage        domain.Stage
	selfMuted    bool
	selfDeafened bool
	nextAttempt  time.Time
	attempts     int
}

// NewDisconnectRequest starts a leave. The zero next attempt makes it due at once.
func NewDisconnectRequest(guild domain.GuildID) *Request {
	return &Request{
		id:    uuid.New(),
		guild: guild,
		stage: domain.StageDisconnect,
	}
}

// NewConnectRequest starts a join or rejoin of channel, due at now.
func NewConnectRequest(guild domain.GuildID, channel domain.ChannelID, stage domain.Stage, now time.Time) *Request {
	return &Request{
		id:          uuid.New(),
		guild:       guild,
		channel:     channel,
		stage:       stage,
		nextAttempt: now,
	}
}

func (r *Request) ID() uuid.UUID               { return r.id }
func (r *Request) Guild() domain.GuildID       { return r.guild }
func (r *Request) Channel() domain.ChannelID   { return r.channel }
func (r *Request) Stage() domain.Stage         { return r.stage }
func (r *Request) SelfMuted() bool             { return r.selfMuted }
func (r *Request) SelfDeafened() bool          { return r.selfDeafened }
func (r *Request) NextAttempt() time.Time      { return r.nextAttempt }
func (r *Request) Attempts() int               { return r.attempts }
func (r *Request) SetStage(stage domain.Stage) { r.stage = stage }

func (r *Request) SetChannel(channel domain.ChannelID) { r.channel = channel }
func (r *Request) SetSelfMuted(muted bool)             { r.selfMuted = muted }
func (r *Request) SetSelfDeafened(deafened bool)       { r.selfDeafened = deafened }
func (r *Request) SetNextAttempt(at time.Time)         { r.nextAttempt = at }

// MarkAttempt counts one emitted frame for this request.
func (r *Request) MarkAttempt() { r.attempts++ }

// Due reports whether the request is unconfirmed and its next attempt has elapsed.
func (r *Request) Due(now time.Time) bool {
	return r.stage.Pending() && !now.Before(r.nextAttempt)
}

func (r *Request) Info() RequestInfo {
	return RequestInfo{
		ID:           r.id,
		GuildID:      r.guild,
		ChannelID:    r.channel,
		Stage:        r.stage,
		SelfMuted:    r.selfMuted,
		SelfDeafened: r.selfDeafened,
		NextAttempt:  r.nextAttempt,
		Attempts:     r.attempts,
	}
}

func (r *Request) String() string {
	return fmt.Sprintf("%s(%s#%s)", r.stage, r.guild, r.channel)
}
