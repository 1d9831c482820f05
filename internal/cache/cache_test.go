package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/weather-mcp/internal/weather"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	return New(ttl, WithNow(clock.Now)), clock
}

func TestKeyRoundsToFourDecimals(t *testing.T) {
	// Coordinates differing only beyond the 4th decimal place collide.
	a := Key(weather.Coordinate{Lat: 55.75396, Lon: 37.620393}, "current", "")
	b := Key(weather.Coordinate{Lat: 55.753961, Lon: 37.6203931}, "current", "")
	assert.Equal(t, a, b)

	// A difference at the 4th decimal place does not.
	c := Key(weather.Coordinate{Lat: 55.7541, Lon: 37.6204}, "current", "")
	assert.NotEqual(t, a, c)
}

func TestKeySeparatesKindAndVariant(t *testing.T) {
	coord := weather.Coordinate{Lat: 55.75, Lon: 37.62}
	current := Key(coord, "current", "")
	forecast3 := Key(coord, "forecast", "3days")
	forecast5 := Key(coord, "forecast", "5days")
	assert.NotEqual(t, current, forecast3)
	assert.NotEqual(t, forecast3, forecast5)
}

func TestGetWithinTTL(t *testing.T) {
	c, clock := newTestCache(600 * time.Second)
	coord := weather.Coordinate{Lat: 55.75, Lon: 37.62}

	c.Set(coord, "current", "", "sunny")
	clock.advance(599 * time.Second)

	text, ok := c.Get(coord, "current", "")
	require.True(t, ok)
	assert.Equal(t, "sunny", text)
}

func TestGetAfterTTLEvicts(t *testing.T) {
	c, clock := newTestCache(600 * time.Second)
	coord := weather.Coordinate{Lat: 55.75, Lon: 37.62}

	c.Set(coord, "current", "", "sunny")
	clock.advance(601 * time.Second)

	_, ok := c.Get(coord, "current", "")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "stale entry should be removed on Get")
}

func TestGetCollapsesNearIdenticalCoordinates(t *testing.T) {
	c, _ := newTestCache(600 * time.Second)

	c.Set(weather.Coordinate{Lat: 55.75396, Lon: 37.620393}, "current", "", "sunny")

	text, ok := c.Get(weather.Coordinate{Lat: 55.753961, Lon: 37.620394}, "current", "")
	require.True(t, ok)
	assert.Equal(t, "sunny", text)
}

func TestSetOverwrites(t *testing.T) {
	c, clock := newTestCache(600 * time.Second)
	coord := weather.Coordinate{Lat: 55.75, Lon: 37.62}

	c.Set(coord, "current", "", "old")
	clock.advance(500 * time.Second)
	c.Set(coord, "current", "", "new")

	// The overwrite refreshed the insertion time.
	clock.advance(500 * time.Second)
	text, ok := c.Get(coord, "current", "")
	require.True(t, ok)
	assert.Equal(t, "new", text)
	assert.Equal(t, 1, c.Len())
}

func TestCleanup(t *testing.T) {
	c, clock := newTestCache(600 * time.Second)

	c.Set(weather.Coordinate{Lat: 1, Lon: 1}, "current", "", "stale")
	c.Set(weather.Coordinate{Lat: 2, Lon: 2}, "current", "", "stale")
	clock.advance(601 * time.Second)
	c.Set(weather.Coordinate{Lat: 3, Lon: 3}, "current", "", "fresh")

	evicted := c.Cleanup()
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, c.Len())

	text, ok := c.Get(weather.Coordinate{Lat: 3, Lon: 3}, "current", "")
	require.True(t, ok)
	assert.Equal(t, "fresh", text)
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(600 * time.Second)
	c.Set(weather.Coordinate{Lat: 1, Lon: 1}, "current", "", "a")
	c.Set(weather.Coordinate{Lat: 2, Lon: 2}, "forecast", "3days", "b")

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(600 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coord := weather.Coordinate{Lat: float64(i % 4), Lon: float64(i % 4)}
			for j := 0; j < 100; j++ {
				c.Set(coord, "current", "", fmt.Sprintf("value-%d", j))
				c.Get(coord, "current", "")
				c.Cleanup()
			}
		}(i)
	}
	wg.Wait()
}
