package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New[string](3)

	c.Set("a", "A", time.Minute)
	c.Set("b", "B", time.Minute)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSetIsIdempotentOnKey(t *testing.T) {
	c := New[string](3)

	c.Set("a", "first", time.Minute)
	c.Set("a", "second", time.Minute)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewWithClock[string](10, clk)

	c.Set("a", "A", time.Millisecond)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	clk.Advance(2 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok, "expired entry must behave like a miss")
	assert.False(t, c.Has("a"))
}

func TestExpiryIsPerEntry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewWithClock[int](10, clk)

	c.Set("short", 1, time.Minute)
	c.Set("long", 2, time.Hour)

	clk.Advance(5 * time.Minute)

	_, ok := c.Get("short")
	assert.False(t, ok)

	v, ok := c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestRefreshAfterExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewWithClock[string](10, clk)

	c.Set("a", "stale", time.Minute)
	clk.Advance(2 * time.Minute)

	c.Set("a", "fresh", time.Minute)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestLRUEviction(t *testing.T) {
	c := New[string](2)

	c.Set("a", "A", time.Minute)
	c.Set("b", "B", time.Minute)
	c.Set("c", "C", time.Minute) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestAccessPromotesEntry(t *testing.T) {
	c := New[string](2)

	c.Set("a", "A", time.Minute)
	c.Set("b", "B", time.Minute)

	// Access "a" to promote it; inserting "c" should evict "b".
	_, _ = c.Get("a")
	c.Set("c", "C", time.Minute)

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestUpdateAtCapacityDoesNotEvict(t *testing.T) {
	c := New[string](2)

	c.Set("a", "A", time.Minute)
	c.Set("b", "B", time.Minute)
	c.Set("a", "A2", time.Minute) // update in place, no eviction

	_, ok := c.Get("b")
	assert.True(t, ok, "update of existing key must not count against capacity")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", v)
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int](5)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Size)
}

func TestStats(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewWithClock[int](10, clk)

	c.Set("live", 1, time.Hour)
	c.Set("dead", 2, time.Minute)
	clk.Advance(5 * time.Minute)

	_, _ = c.Get("live")
	_, _ = c.Get("live")

	// "dead" was not read again, so it is still physically stored.
	s := c.Stats()
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 1, s.Expired)
	assert.Equal(t, 2, s.Size)
	assert.Equal(t, uint64(2), s.Hits)
}

func TestSweepExpired(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewWithClock[int](10, clk)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Hour)
	clk.Advance(10 * time.Minute)

	removed := c.SweepExpired()
	assert.Equal(t, 2, removed)

	s := c.Stats()
	assert.Equal(t, 1, s.Size)
	assert.Equal(t, 0, s.Expired)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%32)
				c.Set(key, i, time.Minute)
				_, _ = c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Size, 64)
}
