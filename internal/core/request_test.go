package core_test

import (
	"testing"
	"time"

	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewDisconnectRequest(t *testing.T) {
	req := core.NewDisconnectRequest("G1")

	assert.Equal(t, domain.StageDisconnect, req.Stage())
	assert.True(t, req.Channel().IsNull())
	assert.True(t, req.NextAttempt().IsZero())
	assert.NotEqual(t, uuid.Nil, req.ID())
	assert.True(t, req.Due(time.Unix(0, 0)))
	assert.Equal(t, "DISCONNECT(G1#null)", req.String())
}

func TestNewConnectRequest(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := core.NewConnectRequest("G1", "voice-42", domain.StageConnect, now)

	assert.Equal(t, now, req.NextAttempt())
	assert.True(t, req.Due(now))
	assert.False(t, req.Due(now.Add(-time.Millisecond)))
	assert.Equal(t, "CONNECT(G1#voice-42)", req.String())
}

func TestRequestMutators(t *testing.T) {
	now := time.Now()
	req := core.NewConnectRequest("G1", "voice-1", domain.StageConnect, now)
	req.SetChannel("voice-2")
	req.SetStage(domain.StageReconnect)
	req.SetSelfMuted(true)
	req.SetSelfDeafened(true)
	req.SetNextAttempt(now.Add(time.Second))
	req.MarkAttempt()
	req.MarkAttempt()

	info := req.Info()
	assert.Equal(t, domain.GuildID("G1"), info.GuildID)
	assert.Equal(t, domain.ChannelID("voice-2"), info.ChannelID)
	assert.Equal(t, domain.StageReconnect, info.Stage)
	assert.True(t, info.SelfMuted)
	assert.True(t, info.SelfDeafened)
	assert.Equal(t, 2, info.Attempts)
	assert.False(t, req.Due(now))
	assert.True(t, req.Due(now.Add(time.Second)))

	req.SetStage(domain.StageIdle)
	assert.False(t, req.Due(now.Add(time.Hour)))
}

func TestRequestIDsAreUnique(t *testing.T) {
	a := core.NewDisconnectRequest("G1")
	b := core.NewDisconnectRequest("G1")
	assert.NotEqual(t, a.ID(), b.ID())
}
