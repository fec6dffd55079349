package app

import (
	"testing"
	"time"

	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestQueueLastWriterWins(t *testing.T) {
	q := NewRequestQueue()
	now := time.Now()

	first := core.NewConnectRequest("G1", "voice-1", domain.StageConnect, now)
	_, replaced := q.Put(first)
	assert.False(t, replaced)

	second := core.NewConnectRequest("G1", "voice-2", domain.StageConnect, now)
	old, replaced := q.Put(second)
	require.True(t, replaced)
	assert.Same(t, first, old)
	assert.Equal(t, 1, q.Len())

	got, ok := q.Get("G1")
	require.True(t, ok)
	assert.Equal(t, domain.ChannelID("voice-2"), got.Channel())
}

func TestRequestQueueRetire(t *testing.T) {
	q := NewRequestQueue()
	req := core.NewDisconnectRequest("G1")
	q.Put(req)

	got, ok := q.Retire("G1")
	require.True(t, ok)
	assert.Same(t, req, got)
	assert.Equal(t, domain.StageIdle, req.Stage())
	assert.Equal(t, 0, q.Len())

	_, ok = q.Retire("G1")
	assert.False(t, ok)
}

func TestRequestQueueDue(t *testing.T) {
	q := NewRequestQueue()
	now := time.Now()

	late := core.NewConnectRequest("G2", "voice-2", domain.StageConnect, now.Add(time.Minute))
	ready := core.NewConnectRequest("G3", "voice-3", domain.StageReconnect, now)
	leave := core.NewDisconnectRequest("G1")
	q.Put(late)
	q.Put(ready)
	q.Put(leave)

	due := q.Due(now)
	require.Len(t, due, 2)
	assert.Equal(t, domain.GuildID("G1"), due[0].Guild())
	assert.Equal(t, domain.GuildID("G3"), due[1].Guild())

	snap := q.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, domain.GuildID("G2"), snap[1].GuildID)

	n := 0
	q.Each(func(*core.Request) { n++ })
	assert.Equal(t, 3, n)
}
