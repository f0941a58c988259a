package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*MemoryCache, *time.Time) {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)

	now := time.Now()
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return c, &now
}

func TestMemoryCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("key", "value", time.Second)

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("absent")
	assert.False(t, ok)
}

func TestMemoryCache_ExpiryIsAMissAndRemoves(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("key", "value", time.Second)
	*now = now.Add(2 * time.Second)

	_, ok := c.Get("key")
	assert.False(t, ok, "expired entry must read as a miss")
	assert.Equal(t, 0, c.Len(), "the discovering read must remove the entry")
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestMemoryCache_Flush(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Flush()

	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_NonPositiveTTLIgnored(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("key", "value", 0)
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("stale", "v", time.Second)
	c.Set("fresh", "v", time.Hour)
	*now = now.Add(2 * time.Second)

	c.cleanup()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set("shared", n, time.Minute)
			c.Get("shared")
			c.Delete("shared")
		}(i)
	}
	wg.Wait()
}
