package gateway

import (
	"sync"

	"github.com/dkeye/voicegate/internal/domain"
)

type call struct {
	Op      string
	Guild   domain.GuildID
	Channel domain.ChannelID
}

type fakeUpdater struct {
	mu       sync.Mutex
	calls    []call
	requeued int
}

func (f *fakeUpdater) Update(guild domain.GuildID, channel domain.ChannelID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: "update", Guild: guild, Channel: channel})
}

func (f *fakeUpdater) Reconnect(guild domain.GuildID, channel domain.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: "reconnect", Guild: guild, Channel: channel})
	return nil
}

func (f *fakeUpdater) Requeue() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued++
	return 0
}

func (f *fakeUpdater) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeUpdater) Requeued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requeued
}
