package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGetRemove(t *testing.T) {
	cache := core.NewConnectionCache()

	_, ok := cache.Get("G1")
	assert.False(t, ok)

	cache.Put(core.NewConnection("G1", "voice-1", false, false, nil))
	conn, ok := cache.Get("G1")
	require.True(t, ok)
	assert.Equal(t, domain.ChannelID("voice-1"), conn.Channel())

	// upsert replaces, never duplicates
	cache.Put(core.NewConnection("G1", "voice-2", true, false, nil))
	assert.Equal(t, 1, cache.Len())
	conn, _ = cache.Get("G1")
	assert.Equal(t, domain.ChannelID("voice-2"), conn.Channel())

	assert.True(t, cache.Remove("G1"))
	assert.False(t, cache.Remove("G1"))
	assert.Equal(t, 0, cache.Len())
}

func TestCacheListIsSortedSnapshot(t *testing.T) {
	cache := core.NewConnectionCache()
	cache.Put(core.NewConnection("G2", "b", false, false, nil))
	cache.Put(core.NewConnection("G1", "a", true, true, nil))

	list := cache.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.GuildID("G1"), list[0].GuildID)
	assert.Equal(t, domain.GuildID("G2"), list[1].GuildID)

	// later mutation does not leak into an earlier snapshot
	conn, _ := cache.Get("G1")
	conn.ApplyChannel("z")
	assert.Equal(t, domain.ChannelID("a"), list[0].ChannelID)
}

func TestCacheUpdateReleasesLockOnPanic(t *testing.T) {
	cache := core.NewConnectionCache()

	assert.Panics(t, func() {
		cache.Update(func(m map[domain.GuildID]*core.Connection) {
			m["G1"] = core.NewConnection("G1", "voice-1", false, false, nil)
			panic("boom")
		})
	})

	// would deadlock if the write lock leaked
	_, ok := cache.Get("G1")
	assert.True(t, ok)
	cache.Put(core.NewConnection("G2", "voice-2", false, false, nil))
	assert.Equal(t, 2, cache.Len())
}

func TestCacheViewReleasesLockOnPanic(t *testing.T) {
	cache := core.NewConnectionCache()
	assert.Panics(t, func() {
		cache.View(func(map[domain.GuildID]*core.Connection) { panic("boom") })
	})
	cache.Put(core.NewConnection("G1", "voice-1", false, false, nil))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheConcurrentWritersAndReaders(t *testing.T) {
	cache := core.NewConnectionCache()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			g := domain.GuildID(fmt.Sprintf("G%03d", i))
			cache.Put(core.NewConnection(g, domain.ChannelID(fmt.Sprintf("C%03d", i)), false, false, nil))
		}(i)
		go func() {
			defer wg.Done()
			cache.View(func(m map[domain.GuildID]*core.Connection) {
				for g, c := range m {
					if g != c.Guild() {
						t.Errorf("entry %s holds connection for %s", g, c.Guild())
					}
				}
			})
			_ = cache.List()
		}()
	}
	wg.Wait()

	list := cache.List()
	require.Len(t, list, n)
	for i, info := range list {
		assert.Equal(t, domain.GuildID(fmt.Sprintf("G%03d", i)), info.GuildID)
		assert.Equal(t, domain.ChannelID(fmt.Sprintf("C%03d", i)), info.ChannelID)
	}
}
