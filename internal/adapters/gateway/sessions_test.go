package gateway

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceSessionsLifecycle(t *testing.T) {
	clk := clock.NewMock()
	s := NewVoiceSessions(clk)

	_, ok := s.Get("g1")
	assert.False(t, ok)

	s.UpdateState("g1", "sess", "c1")
	clk.Add(time.Second)
	s.UpdateServer("g1", "tok", "voice.example:443")

	vs, ok := s.Get("g1")
	require.True(t, ok)
	assert.True(t, vs.Ready())
	assert.Equal(t, clk.Now(), vs.UpdatedAt)

	s.ClearServer("g1")
	vs, _ = s.Get("g1")
	assert.False(t, vs.Ready())
	assert.Equal(t, "sess", vs.SessionID)

	s.UpdateState("g1", "sess", "")
	_, ok = s.Get("g1")
	assert.False(t, ok)
}

func TestVoiceSessionsGetReturnsCopy(t *testing.T) {
	s := NewVoiceSessions(clock.NewMock())
	s.UpdateState("g1", "sess", "c1")

	vs, _ := s.Get("g1")
	vs.ChannelID = "other"

	again, _ := s.Get("g1")
	assert.Equal(t, "c1", string(again.ChannelID))
}
