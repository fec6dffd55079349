package gateway

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dkeye/voicegate/internal/app/orch"
	"github.com/rs/zerolog/log"
)

// ResendTarget re-emits requests that are still unconfirmed.
type ResendTarget interface {
	Resend() orch.ResendStats
}

// Resender polls the target on a fixed interval. How long each request
// waits between attempts is decided by the target's retry policy.
type Resender struct {
	target   ResendTarget
	clock    clock.Clock
	interval time.Duration
}

func NewResender(target ResendTarget, clk clock.Clock, interval time.Duration) *Resender {
	if clk == nil {
		clk = clock.New()
	}
	return &Resender{target: target, clock: clk, interval: interval}
}

func (r *Resender) Run(ctx context.Context) error {
	ticker := r.clock.Ticker(r.interval)
	defer ticker.Stop()

	log.Info().Str("module", "gateway.resend").Dur("interval", r.interval).Msg("resend loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "gateway.resend").Msg("resend loop ctx done")
			return nil
		case <-ticker.C:
			stats := r.target.Resend()
			if stats.Due > 0 {
				log.Debug().
					Str("module", "gateway.resend").
					Int("due", stats.Due).
					Int("sent", stats.Sent).
					Int("exhausted", stats.Exhausted).
					Msg("resend pass")
			}
		}
	}
}
