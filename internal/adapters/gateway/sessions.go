package gateway

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dkeye/voicegate/internal/domain"
)

// VoiceSession is what the media layer needs to open the voice socket of a guild.
type VoiceSession struct {
	GuildID   domain.GuildID
	ChannelID domain.ChannelID
	SessionID string
	Token     string
	Endpoint  string
	UpdatedAt time.Time
}

// Ready reports whether both handshake phases have been seen.
func (v VoiceSession) Ready() bool {
	return !v.ChannelID.IsNull() && v.SessionID != "" && v.Token != "" && v.Endpoint != ""
}

// VoiceSessions tracks the latest self voice state and server assignment per guild.
type VoiceSessions struct {
	mu      sync.RWMutex
	clock   clock.Clock
	byGuild map[domain.GuildID]*VoiceSession
}

func NewVoiceSessions(clk clock.Clock) *VoiceSessions {
	if clk == nil {
		clk = clock.New()
	}
	return &VoiceSessions{clock: clk, byGuild: make(map[domain.GuildID]*VoiceSession)}
}

func (s *VoiceSessions) entry(guild domain.GuildID) *VoiceSession {
	v := s.byGuild[guild]
	if v == nil {
		v = &VoiceSession{GuildID: guild}
		s.byGuild[guild] = v
	}
	v.UpdatedAt = s.clock.Now()
	return v
}

// UpdateState records the self voice state. Leaving drops the session.
func (s *VoiceSessions) UpdateState(guild domain.GuildID, sessionID string, channel domain.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel.IsNull() {
		delete(s.byGuild, guild)
		return
	}
	v := s.entry(guild)
	v.SessionID = sessionID
	v.ChannelID = channel
}

func (s *VoiceSessions) UpdateServer(guild domain.GuildID, token, endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.entry(guild)
	v.Token = token
	v.Endpoint = endpoint
}

// ClearServer forgets the server assignment but keeps the voice state.
func (s *VoiceSessions) ClearServer(guild domain.GuildID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byGuild[guild]; ok {
		v.Token = ""
		v.Endpoint = ""
	}
}

func (s *VoiceSessions) Get(guild domain.GuildID) (VoiceSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byGuild[guild]
	if !ok {
		return VoiceSession{}, false
	}
	return *v, true
}
