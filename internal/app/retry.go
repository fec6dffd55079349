package app

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/dkeye/voicegate/internal/core"
	"github.com/google/uuid"
)

// RetryPolicy schedules resends of unconfirmed requests.
type RetryPolicy interface {
	// Next returns the delay until req is attempted again, or false once
	// resends for req are exhausted.
	Next(req *core.Request) (time.Duration, bool)
	// Forget drops whatever state is kept for the request.
	Forget(id uuid.UUID)
}

type BackoffConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
	// MaxAttempts caps the frames emitted per request; zero means unlimited.
	MaxAttempts uint64
	// MaxElapsed caps the lifetime of a request; zero means unlimited.
	MaxElapsed time.Duration
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		Jitter:          0.1,
		MaxAttempts:     10,
	}
}

// BackoffPolicy keeps one exponential backoff per request ID.
// Not synchronized: callers serialize access.
type BackoffPolicy struct {
	cfg   BackoffConfig
	clock clock.Clock
	byID  map[uuid.UUID]backoff.BackOff
}

func NewBackoffPolicy(cfg BackoffConfig, clk clock.Clock) *BackoffPolicy {
	if clk == nil {
		clk = clock.New()
	}
	return &BackoffPolicy{
		cfg:   cfg,
		clock: clk,
		byID:  make(map[uuid.UUID]backoff.BackOff),
	}
}

func (p *BackoffPolicy) Next(req *core.Request) (time.Duration, bool) {
	b, ok := p.byID[req.ID()]
	if !ok {
		b = p.newBackOff()
		p.byID[req.ID()] = b
	}
	d := b.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	return d, true
}

func (p *BackoffPolicy) Forget(id uuid.UUID) {
	delete(p.byID, id)
}

// Tracked reports how many requests currently hold backoff state.
func (p *BackoffPolicy) Tracked() int { return len(p.byID) }

func (p *BackoffPolicy) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.cfg.InitialInterval
	eb.MaxInterval = p.cfg.MaxInterval
	eb.Multiplier = p.cfg.Multiplier
	eb.RandomizationFactor = p.cfg.Jitter
	eb.MaxElapsedTime = p.cfg.MaxElapsed
	eb.Clock = p.clock
	eb.Reset()

	if p.cfg.MaxAttempts == 0 {
		return eb
	}
	return backoff.WithMaxRetries(eb, p.cfg.MaxAttempts)
}
