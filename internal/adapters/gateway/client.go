package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrNotConnected = errors.New("gateway not connected")
	ErrRateLimited  = errors.New("voice state rate limited")
	ErrUnbound      = errors.New("gateway client has no updater")
)

type Config struct {
	URL          string
	Token        string
	UserID       string
	SendBuffer   int
	WriteTimeout time.Duration
	RateLimit    int
	RateInterval time.Duration
	RedialMin    time.Duration
	RedialMax    time.Duration
}

// session is one live websocket connection. It ends when either pump stops.
type session struct {
	conn   *websocket.Conn
	send   chan Frame
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// seq is the last dispatch sequence, nil until the first one arrives.
	seq       atomic.Pointer[int64]
	heartbeat sync.Once
}

// Client is the websocket gateway. It implements core.Transport: emits only
// enqueue frames, the write pump flushes them.
type Client struct {
	cfg      Config
	clock    clock.Clock
	limiter  *RateLimiter
	sessions *VoiceSessions
	dialer   websocket.Dialer
	logger   zerolog.Logger

	updater    Updater
	dispatcher *Dispatcher

	mu      sync.RWMutex
	current *session
}

func NewClient(cfg Config, clk clock.Clock) *Client {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.RedialMin <= 0 {
		cfg.RedialMin = time.Second
	}
	if cfg.RedialMax < cfg.RedialMin {
		cfg.RedialMax = 30 * time.Second
	}
	return &Client{
		cfg:      cfg,
		clock:    clk,
		limiter:  NewRateLimiter(cfg.RateLimit, cfg.RateInterval, clk),
		sessions: NewVoiceSessions(clk),
		dialer:   websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   log.With().Str("module", "gateway").Logger(),
	}
}

// Bind attaches the receiver of confirmations. It must be called before Run.
func (c *Client) Bind(updater Updater) {
	c.updater = updater
	c.dispatcher = NewDispatcher(c.cfg.UserID, updater, c.sessions)
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// Session returns the voice session info gathered for guild.
func (c *Client) Session(guild domain.GuildID) (VoiceSession, bool) {
	return c.sessions.Get(guild)
}

func (c *Client) EmitStateUpdate(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) error {
	return c.emitVoiceState(VoiceStateUpdate{
		GuildID:   guild,
		ChannelID: channelRef(channel),
		SelfMute:  selfMute,
		SelfDeaf:  selfDeaf,
	})
}

func (c *Client) EmitDisconnect(guild domain.GuildID) error {
	return c.emitVoiceState(VoiceStateUpdate{GuildID: guild})
}

func (c *Client) emitVoiceState(p VoiceStateUpdate) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	if !c.limiter.Allow(p.GuildID) {
		return ErrRateLimited
	}
	f, err := encode(OpVoiceStateUpdate, p)
	if err != nil {
		return fmt.Errorf("encode voice state: %w", err)
	}
	return c.TrySend(f)
}

// TrySend queues f on the live session without blocking.
func (c *Client) TrySend(f Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ErrNotConnected
	}
	select {
	case c.current.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Run keeps a gateway session open until ctx is done, redialing with
// exponential backoff. Pending requests are requeued on every new session.
func (c *Client) Run(ctx context.Context) error {
	if c.updater == nil {
		return ErrUnbound
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RedialMin
	b.MaxInterval = c.cfg.RedialMax
	b.MaxElapsedTime = 0
	b.Clock = c.clock
	b.Reset()

	for {
		var conn *websocket.Conn
		err := backoff.RetryNotify(func() error {
			var err error
			conn, err = c.dial(ctx)
			return err
		}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
			c.logger.Warn().Err(err).Dur("retry_in", next).Msg("gateway dial failed")
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("gateway dial: %w", err)
		}
		b.Reset()

		c.serve(ctx, conn)
		if ctx.Err() != nil {
			c.logger.Info().Msg("gateway stopped")
			return nil
		}
		c.logger.Warn().Msg("gateway session ended, redialing")
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bot "+c.cfg.Token)
	}
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// serve runs one session to completion.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	s := &session{
		conn: conn,
		send: make(chan Frame, c.cfg.SendBuffer),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	c.logger.Info().Str("url", c.cfg.URL).Msg("gateway connected")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		_ = conn.Close()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.cancel()
		c.writePump(s)
	}()

	if f, err := encode(OpIdentify, Identify{Token: c.cfg.Token, UserID: c.cfg.UserID}); err == nil {
		_ = c.TrySend(f)
	}
	if n := c.updater.Requeue(); n > 0 {
		c.logger.Info().Int("pending", n).Msg("requeued pending voice requests")
	}

	c.readPump(s)
	s.cancel()

	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	s.wg.Wait()
}
