package server

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mcptools/weather-mcp/internal/weather"
)

// Geocoder resolves a place name to its best match. A nil Place with a
// nil error means the name matched nothing.
type Geocoder interface {
	Geocode(ctx context.Context, name, lang string) (*weather.Place, error)
}

// Resolver turns a free-form location argument into a coordinate. It
// never fails: a weather lookup should always attempt something, so
// every unresolvable input falls back to the configured default.
type Resolver struct {
	geocoder Geocoder
	lang     string
	fallback weather.Coordinate
	log      zerolog.Logger
}

// NewResolver creates a Resolver that geocodes in lang and falls back to
// the given default coordinate.
func NewResolver(geocoder Geocoder, lang string, fallback weather.Coordinate, log zerolog.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		lang:     lang,
		fallback: fallback,
		log:      log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve resolves location in order: "lat,lon" strings parse directly
// with no network call; anything else is geocoded as a place name; an
// empty string, a failed lookup, or an empty result yields the default.
func (r *Resolver) Resolve(ctx context.Context, location string) weather.Coordinate {
	if location == "" {
		return r.fallback
	}

	if strings.Contains(location, ",") {
		if coord, err := weather.ParseCoordinate(location); err == nil {
			return coord
		}
	}

	place, err := r.geocoder.Geocode(ctx, location, r.lang)
	if err != nil {
		r.log.Warn().Err(err).Str("location", location).Msg("geocoding failed, using default location")
		return r.fallback
	}
	if place == nil {
		r.log.Debug().Str("location", location).Msg("no geocoding match, using default location")
		return r.fallback
	}
	return place.Coordinate
}
