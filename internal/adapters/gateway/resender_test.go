package gateway

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dkeye/voicegate/internal/app/orch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTarget struct{ passes atomic.Int32 }

func (c *countingTarget) Resend() orch.ResendStats {
	c.passes.Add(1)
	return orch.ResendStats{Due: 1, Sent: 1}
}

func TestResenderPollsOnInterval(t *testing.T) {
	clk := clock.NewMock()
	target := &countingTarget{}
	r := NewResender(target, clk, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		clk.Add(time.Second)
		return target.passes.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("resender did not stop")
	}
}
