package orch

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/dkeye/voicegate/internal/app"
	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	emitInitial = "initial"
	emitResend  = "resend"
)

type Options struct {
	Clock   clock.Clock
	Policy  app.RetryPolicy
	Metrics *app.Metrics
	// RetainOnDisconnect keeps a guild's connection, with no channel, after a
	// confirmed leave instead of evicting it.
	RetainOnDisconnect bool
}

// ResendStats reports one pass of the resend loop.
type ResendStats struct {
	Due       int
	Sent      int
	Exhausted int
}

// Controller drives the two-phase voice handshake for every guild.
// It owns the pending requests and the connection cache; the transport only
// emits frames and reports confirmations back through Update.
type Controller struct {
	transport core.Transport
	cache     *core.ConnectionCache
	clock     clock.Clock
	policy    app.RetryPolicy
	metrics   *app.Metrics
	retain    bool
	logger    zerolog.Logger

	// mu serializes request and cache mutation.
	mu       sync.Mutex
	requests *app.RequestQueue
}

func NewController(transport core.Transport, cache *core.ConnectionCache, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Policy == nil {
		opts.Policy = app.NewBackoffPolicy(app.DefaultBackoffConfig(), opts.Clock)
	}
	if opts.Metrics == nil {
		opts.Metrics = app.NewMetrics(nil)
	}
	if cache == nil {
		cache = core.NewConnectionCache()
	}
	return &Controller{
		transport: transport,
		cache:     cache,
		clock:     opts.Clock,
		policy:    opts.Policy,
		metrics:   opts.Metrics,
		retain:    opts.RetainOnDisconnect,
		logger:    log.With().Str("module", "app.orch").Logger(),
		requests:  app.NewRequestQueue(),
	}
}

// Connect asks to join channel in guild. A newer intent for the same guild
// replaces any unconfirmed one.
func (c *Controller) Connect(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) error {
	if err := guild.Validate(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := channel.Validate(); err != nil {
		return fmt.Errorf("connect %s: %w", guild, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.connectLocked(guild, channel, selfMute, selfDeaf)
	return nil
}

func (c *Controller) connectLocked(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) {
	req := core.NewConnectRequest(guild, channel, domain.StageConnect, c.clock.Now())
	req.SetSelfMuted(selfMute)
	req.SetSelfDeafened(selfDeaf)
	c.submit(req)
}

// Disconnect asks to leave the guild's voice channel. Leaving a guild that is
// not attached is harmless on the wire, so the leave is always sent.
func (c *Controller) Disconnect(guild domain.GuildID) error {
	if err := guild.Validate(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.submit(core.NewDisconnectRequest(guild))
	return nil
}

// Reconnect re-attempts the guild's destination after the session was lost.
// An empty channel means the currently requested channel, else the cached one.
// The leave goes out first; the join follows once the leave is confirmed.
// A pending disconnect is never turned back into a join.
func (c *Controller) Reconnect(guild domain.GuildID, channel domain.ChannelID) error {
	if err := guild.Validate(); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var selfMute, selfDeaf bool
	if prev, ok := c.requests.Get(guild); ok {
		if prev.Stage() == domain.StageDisconnect {
			c.logger.Debug().Str("guild", string(guild)).Str("request", prev.String()).Msg("reconnect ignored, leave pending")
			return nil
		}
		if channel.IsNull() {
			channel = prev.Channel()
		}
		selfMute, selfDeaf = prev.SelfMuted(), prev.SelfDeafened()
	} else if conn, ok := c.cache.Get(guild); ok {
		info := conn.Snapshot()
		if channel.IsNull() {
			channel = info.ChannelID
		}
		selfMute, selfDeaf = info.SelfMuted, info.SelfDeafened
	}
	if err := channel.Validate(); err != nil {
		return fmt.Errorf("reconnect %s: %w", guild, err)
	}

	req := core.NewConnectRequest(guild, channel, domain.StageReconnect, c.clock.Now())
	req.SetSelfMuted(selfMute)
	req.SetSelfDeafened(selfDeaf)
	c.submit(req)
	return nil
}

// Update is called by the transport's dispatch path on the voice state echo
// and on the voice server assignment for the client's own user. An empty
// channel confirms a leave.
func (c *Controller) Update(guild domain.GuildID, channel domain.ChannelID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, pending := c.requests.Get(guild)
	if channel.IsNull() {
		c.confirmLeave(guild, req, pending)
	} else {
		c.confirmJoin(guild, channel, req, pending)
	}
	c.metrics.Connections.Set(float64(c.cache.Len()))
	c.metrics.Pending.Set(float64(c.requests.Len()))
}

func (c *Controller) confirmJoin(guild domain.GuildID, channel domain.ChannelID, req *core.Request, pending bool) {
	if !pending {
		// Unsolicited: the server assignment after a confirmed join, a server
		// side move, or a session resumed after restart.
		moved := true
		c.cache.Update(func(m map[domain.GuildID]*core.Connection) {
			if conn, ok := m[guild]; ok {
				moved = conn.Channel() != channel
				conn.ApplyChannel(channel)
				return
			}
			m[guild] = core.NewConnection(guild, channel, false, false, c)
		})
		if moved {
			c.logger.Info().Str("guild", string(guild)).Str("channel", string(channel)).Msg("unsolicited voice state accepted")
		}
		return
	}

	if req.Stage() == domain.StageDisconnect || req.Channel() != channel {
		c.stale(req, channel)
		return
	}

	selfMute, selfDeaf := req.SelfMuted(), req.SelfDeafened()
	c.cache.Update(func(m map[domain.GuildID]*core.Connection) {
		if conn, ok := m[guild]; ok {
			conn.Apply(channel, selfMute, selfDeaf)
			return
		}
		m[guild] = core.NewConnection(guild, channel, selfMute, selfDeaf, c)
	})
	c.retire(req, "confirmed")
}

func (c *Controller) confirmLeave(guild domain.GuildID, req *core.Request, pending bool) {
	if !pending {
		// Dropped by the server without being asked.
		c.detach(guild)
		return
	}

	switch req.Stage() {
	case domain.StageDisconnect:
		c.detach(guild)
		c.retire(req, "confirmed")
	case domain.StageReconnect:
		// First half of a reconnect is done; join again right away.
		c.policy.Forget(req.ID())
		req.SetStage(domain.StageConnect)
		req.SetNextAttempt(c.clock.Now())
		c.logger.Info().Str("guild", string(guild)).Str("request", req.String()).Msg("reconnect left, joining")
		c.emit(req, emitInitial)
		c.schedule(req)
	default:
		c.stale(req, "")
	}
}

// Resend re-emits every due request with its latest state. Called
// periodically by the transport's resend loop.
func (c *Controller) Resend() ResendStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	due := c.requests.Due(now)
	stats := ResendStats{Due: len(due)}
	for _, req := range due {
		d, ok := c.policy.Next(req)
		if !ok {
			c.logger.Warn().
				Str("guild", string(req.Guild())).
				Str("request", req.String()).
				Int("attempts", req.Attempts()).
				Msg("request not confirmed, giving up")
			c.metrics.ObserveExhausted(req.Stage())
			c.retire(req, "exhausted")
			stats.Exhausted++
			continue
		}
		c.emit(req, emitResend)
		req.SetNextAttempt(now.Add(d))
		stats.Sent++
	}
	c.metrics.Pending.Set(float64(c.requests.Len()))
	return stats
}

// Requeue makes every pending request due now. The transport calls it after
// its session was re-established.
func (c *Controller) Requeue() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.requests.Each(func(req *core.Request) { req.SetNextAttempt(now) })
	return c.requests.Len()
}

// Announce implements core.Announcer for cached connections. An attached
// connection goes through Connect so the pending request carries the latest
// flags; a detached one is announced as is. Guilds no longer in the cache
// are not rejoined.
func (c *Controller) Announce(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) {
	if channel.IsNull() {
		if err := c.transport.EmitStateUpdate(guild, channel, selfMute, selfDeaf); err != nil {
			c.logger.Warn().Err(err).Str("guild", string(guild)).Msg("announce failed")
		}
		return
	}
	if err := guild.Validate(); err != nil {
		c.logger.Warn().Err(err).Msg("announce rejected")
		return
	}
	if err := channel.Validate(); err != nil {
		c.logger.Warn().Err(err).Str("guild", string(guild)).Msg("announce rejected")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cache.Get(guild); !ok {
		c.logger.Debug().Str("guild", string(guild)).Msg("announce for evicted connection dropped")
		return
	}
	c.connectLocked(guild, channel, selfMute, selfDeaf)
}

func (c *Controller) Connection(guild domain.GuildID) (*core.Connection, bool) {
	return c.cache.Get(guild)
}

func (c *Controller) Connections() []core.ConnectionInfo {
	return c.cache.List()
}

func (c *Controller) Pending() []core.RequestInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests.Snapshot()
}

func (c *Controller) Stage(guild domain.GuildID) domain.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req, ok := c.requests.Get(guild); ok {
		return req.Stage()
	}
	return domain.StageIdle
}

// submit replaces the guild's request with req and sends it at once.
func (c *Controller) submit(req *core.Request) {
	if old, ok := c.requests.Put(req); ok {
		superseded := old.String()
		c.policy.Forget(old.ID())
		old.SetStage(domain.StageIdle)
		c.logger.Debug().Str("guild", string(req.Guild())).Str("old", superseded).Str("new", req.String()).Msg("request superseded")
	}
	c.logger.Info().Str("guild", string(req.Guild())).Str("request", req.String()).Str("id", req.ID().String()).Msg("request queued")
	c.emit(req, emitInitial)
	c.schedule(req)
	c.metrics.Pending.Set(float64(c.requests.Len()))
}

func (c *Controller) emit(req *core.Request, kind string) {
	var err error
	switch req.Stage() {
	case domain.StageConnect:
		err = c.transport.EmitStateUpdate(req.Guild(), req.Channel(), req.SelfMuted(), req.SelfDeafened())
	case domain.StageReconnect, domain.StageDisconnect:
		err = c.transport.EmitDisconnect(req.Guild())
	default:
		return
	}
	req.MarkAttempt()
	c.metrics.ObserveEmit(req.Stage(), kind)
	if err != nil {
		c.logger.Warn().Err(err).Str("guild", string(req.Guild())).Str("request", req.String()).Msg("emit failed, will resend")
	}
}

// schedule sets the next resend. An exhausted policy leaves the request due
// so the next resend pass retires it.
func (c *Controller) schedule(req *core.Request) {
	now := c.clock.Now()
	if d, ok := c.policy.Next(req); ok {
		req.SetNextAttempt(now.Add(d))
		return
	}
	req.SetNextAttempt(now)
}

func (c *Controller) retire(req *core.Request, reason string) {
	stage := req.Stage()
	c.requests.Retire(req.Guild())
	c.policy.Forget(req.ID())
	if reason == "confirmed" {
		c.metrics.ObserveConfirm(stage)
	}
	c.logger.Info().Str("guild", string(req.Guild())).Str("stage", stage.String()).Str("reason", reason).Msg("request retired")
}

func (c *Controller) stale(req *core.Request, channel domain.ChannelID) {
	c.metrics.Stale.Inc()
	c.logger.Debug().
		Str("guild", string(req.Guild())).
		Str("request", req.String()).
		Str("channel", channel.String()).
		Msg("stale confirmation ignored")
}

func (c *Controller) detach(guild domain.GuildID) {
	if c.retain {
		if conn, ok := c.cache.Get(guild); ok {
			conn.ApplyChannel("")
		}
		return
	}
	c.cache.Remove(guild)
}
