package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/fetchbot/internal/domain"
)

func pendingFor(chatID int64, url string) domain.Pending {
	return domain.Pending{
		Request: domain.NewRequest(chatID, url),
		Probe:   &domain.ProbeResult{ID: "abc123", Title: "t", Ext: "mp4"},
	}
}

func TestMemorySessionStore_PutTake(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, pendingFor(1, "https://youtu.be/abc123"))

	p, ok := store.Take(1)
	require.True(t, ok)
	assert.Equal(t, "https://youtu.be/abc123", p.Request.URL)

	_, ok = store.Take(1)
	assert.False(t, ok, "take consumes the pending entry")
}

func TestMemorySessionStore_NewURLOverwritesPending(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, pendingFor(1, "https://youtu.be/first"))
	store.Put(1, pendingFor(1, "https://youtu.be/second"))

	p, ok := store.Take(1)
	require.True(t, ok)
	assert.Equal(t, "https://youtu.be/second", p.Request.URL)
}

func TestMemorySessionStore_SessionsAreIndependent(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, pendingFor(1, "https://youtu.be/one"))
	store.Put(2, pendingFor(2, "https://youtu.be/two"))

	p1, ok := store.Take(1)
	require.True(t, ok)
	p2, ok := store.Take(2)
	require.True(t, ok)

	assert.Equal(t, "https://youtu.be/one", p1.Request.URL)
	assert.Equal(t, "https://youtu.be/two", p2.Request.URL)
}

func TestMemorySessionStore_ConcurrentSessions(t *testing.T) {
	store := NewMemorySessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			url := fmt.Sprintf("https://youtu.be/%d", id)
			store.Put(id, pendingFor(id, url))
			p, ok := store.Take(id)
			assert.True(t, ok)
			assert.Equal(t, url, p.Request.URL)
		}(int64(i))
	}
	wg.Wait()
}
