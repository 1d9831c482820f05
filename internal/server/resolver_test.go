package server

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mcptools/weather-mcp/internal/weather"
)

// stubGeocoder serves canned places and counts lookups.
type stubGeocoder struct {
	place *weather.Place
	err   error
	calls int
}

func (g *stubGeocoder) Geocode(_ context.Context, name, lang string) (*weather.Place, error) {
	g.calls++
	return g.place, g.err
}

var testFallback = weather.Coordinate{Lat: 55.75396, Lon: 37.620393}

func newTestResolver(g *stubGeocoder) *Resolver {
	return NewResolver(g, "en", testFallback, zerolog.Nop())
}

func TestResolveCoordinateString(t *testing.T) {
	g := &stubGeocoder{}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "55.75,37.62")
	assert.Equal(t, weather.Coordinate{Lat: 55.75, Lon: 37.62}, coord)
	assert.Zero(t, g.calls, "coordinate strings must resolve without a network call")
}

func TestResolvePlaceName(t *testing.T) {
	g := &stubGeocoder{place: &weather.Place{
		Coordinate: weather.Coordinate{Lat: 55.75, Lon: 37.62},
		Name:       "Moscow",
		Country:    "Russia",
	}}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "Moscow")
	assert.Equal(t, weather.Coordinate{Lat: 55.75, Lon: 37.62}, coord)
	assert.Equal(t, 1, g.calls)
}

func TestResolveEmptyUsesDefault(t *testing.T) {
	g := &stubGeocoder{}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "")
	assert.Equal(t, testFallback, coord)
	assert.Zero(t, g.calls)
}

func TestResolveNoMatchUsesDefault(t *testing.T) {
	g := &stubGeocoder{}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "Atlantis")
	assert.Equal(t, testFallback, coord)
	assert.Equal(t, 1, g.calls)
}

func TestResolveGeocodingErrorUsesDefault(t *testing.T) {
	g := &stubGeocoder{err: errors.New("connection refused")}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "Moscow")
	assert.Equal(t, testFallback, coord)
}

func TestResolveUnparsableCommaStringGeocodes(t *testing.T) {
	// "Washington, DC" contains a comma but is not a coordinate pair.
	g := &stubGeocoder{place: &weather.Place{
		Coordinate: weather.Coordinate{Lat: 38.9, Lon: -77.04},
		Name:       "Washington",
	}}
	r := newTestResolver(g)

	coord := r.Resolve(context.Background(), "Washington, DC")
	assert.Equal(t, weather.Coordinate{Lat: 38.9, Lon: -77.04}, coord)
	assert.Equal(t, 1, g.calls)
}
