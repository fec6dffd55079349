package app

import (
	"sort"
	"time"

	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
)

// RequestQueue holds at most one pending request per guild.
// It is not synchronized: the owner mutates it inside its own critical section.
type RequestQueue struct {
	byGuild map[domain.GuildID]*core.Request
}

func NewRequestQueue() *RequestQueue {
	return &RequestQueue{byGuild: make(map[domain.GuildID]*core.Request)}
}

// Put stores req and returns the request it superseded, if any.
func (q *RequestQueue) Put(req *core.Request) (*core.Request, bool) {
	old, ok := q.byGuild[req.Guild()]
	q.byGuild[req.Guild()] = req
	return old, ok
}

func (q *RequestQueue) Get(guild domain.GuildID) (*core.Request, bool) {
	req, ok := q.byGuild[guild]
	return req, ok
}

// Retire drops the guild's request and marks it idle.
func (q *RequestQueue) Retire(guild domain.GuildID) (*core.Request, bool) {
	req, ok := q.byGuild[guild]
	if !ok {
		return nil, false
	}
	delete(q.byGuild, guild)
	req.SetStage(domain.StageIdle)
	return req, true
}

func (q *RequestQueue) Len() int { return len(q.byGuild) }

// Due returns the requests whose next attempt has elapsed, ordered by guild.
func (q *RequestQueue) Due(now time.Time) []*core.Request {
	var out []*core.Request
	for _, req := range q.byGuild {
		if req.Due(now) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Guild() < out[j].Guild() })
	return out
}

// Each visits every pending request in no particular order.
func (q *RequestQueue) Each(fn func(*core.Request)) {
	for _, req := range q.byGuild {
		fn(req)
	}
}

func (q *RequestQueue) Snapshot() []core.RequestInfo {
	out := make([]core.RequestInfo, 0, len(q.byGuild))
	for _, req := range q.byGuild {
		out = append(out, req.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}
