package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcptools/weather-mcp/internal/cache"
	"github.com/mcptools/weather-mcp/internal/weather"
)

// Cache key kinds.
const (
	kindCurrent  = "current"
	kindForecast = "forecast"
)

const defaultForecastDays = 3

// WeatherAPI is the upstream client surface the dispatcher depends on.
type WeatherAPI interface {
	Geocoder
	FetchCurrent(ctx context.Context, coord weather.Coordinate, lang string) (*weather.CurrentPayload, error)
	FetchForecast(ctx context.Context, coord weather.Coordinate, days int, lang string) (*weather.ForecastPayload, error)
}

// Dispatcher executes tool calls. It validates arguments, resolves the
// location, consults the cache, and on a miss fetches from the upstream
// client and formats the payload. It never fails toward the protocol
// layer: every failure is rendered as a textual error content block.
type Dispatcher struct {
	api      WeatherAPI
	cache    *cache.Cache
	resolver *Resolver
	lang     string
	validate *validator.Validate
	log      zerolog.Logger
}

// NewDispatcher wires the dispatcher to its collaborators. lang and
// fallback come from configuration.
func NewDispatcher(api WeatherAPI, c *cache.Cache, lang string, fallback weather.Coordinate, log zerolog.Logger) *Dispatcher {
	v := validator.New()
	// Report failed fields by their JSON name, matching what the caller
	// actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Dispatcher{
		api:      api,
		cache:    c,
		resolver: NewResolver(api, lang, fallback, log),
		lang:     lang,
		validate: v,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Per-tool request structs. Optional numeric fields are pointers so that
// an absent argument is distinguishable from a legitimate zero value
// (0, 0 is a valid coordinate).

type currentWeatherRequest struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
	Lon      *float64 `json:"lon" validate:"omitempty,longitude"`
}

type forecastRequest struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
	Lon      *float64 `json:"lon" validate:"omitempty,longitude"`
	Days     *int     `json:"days"`
}

type searchLocationRequest struct {
	CityName string `json:"city_name" validate:"required"`
}

// Invoke runs the named tool against the argument bag and always returns
// a well-formed single-block result. Unknown tools, argument errors,
// upstream failures, and panics all become error text; nothing escapes
// as a protocol-level fault.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args json.RawMessage) (res *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("tool", name).Interface("panic", r).Msg("tool invocation panicked")
			res = errorResult("an error occurred while handling the request")
		}
	}()

	switch name {
	case toolCurrentWeather:
		return d.currentWeather(ctx, args)
	case toolWeatherForecast:
		return d.weatherForecast(ctx, args)
	case toolSearchLocation:
		return d.searchLocation(ctx, args)
	default:
		d.log.Warn().Str("tool", name).Msg("unknown tool requested")
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}
}

func (d *Dispatcher) currentWeather(ctx context.Context, args json.RawMessage) *mcp.CallToolResult {
	var req currentWeatherRequest
	if msg, ok := d.decode(args, &req); !ok {
		return errorResult(msg)
	}

	coord := d.coordinate(ctx, req.Location, req.Lat, req.Lon)

	if text, ok := d.cache.Get(coord, kindCurrent, ""); ok {
		d.log.Debug().Stringer("coord", coord).Msg("current weather served from cache")
		return textResult(text)
	}

	payload, err := d.api.FetchCurrent(ctx, coord, d.lang)
	if err != nil {
		d.log.Error().Err(err).Stringer("coord", coord).Msg("current weather fetch failed")
		return errorResult(err.Error())
	}

	text := weather.FormatCurrent(payload)
	d.cache.Set(coord, kindCurrent, "", text)
	return textResult(text)
}

func (d *Dispatcher) weatherForecast(ctx context.Context, args json.RawMessage) *mcp.CallToolResult {
	var req forecastRequest
	if msg, ok := d.decode(args, &req); !ok {
		return errorResult(msg)
	}

	days := defaultForecastDays
	if req.Days != nil {
		days = weather.ClampDays(*req.Days)
	}
	coord := d.coordinate(ctx, req.Location, req.Lat, req.Lon)
	variant := fmt.Sprintf("%ddays", days)

	if text, ok := d.cache.Get(coord, kindForecast, variant); ok {
		d.log.Debug().Stringer("coord", coord).Int("days", days).Msg("forecast served from cache")
		return textResult(text)
	}

	payload, err := d.api.FetchForecast(ctx, coord, days, d.lang)
	if err != nil {
		d.log.Error().Err(err).Stringer("coord", coord).Int("days", days).Msg("forecast fetch failed")
		return errorResult(err.Error())
	}

	text := weather.FormatForecast(payload, days)
	d.cache.Set(coord, kindForecast, variant, text)
	return textResult(text)
}

// searchLocation bypasses the cache: it always geocodes directly. A
// lookup error is deliberately conflated with "no match" — the caller
// sees the same not-found text either way, and the cause is logged.
func (d *Dispatcher) searchLocation(ctx context.Context, args json.RawMessage) *mcp.CallToolResult {
	var req searchLocationRequest
	if msg, ok := d.decode(args, &req); !ok {
		return errorResult(msg)
	}

	place, err := d.api.Geocode(ctx, req.CityName, d.lang)
	if err != nil {
		d.log.Warn().Err(err).Str("city", req.CityName).Msg("geocoding lookup failed")
	}
	if place == nil {
		return textResult(fmt.Sprintf("City %q not found", req.CityName))
	}
	return textResult(fmt.Sprintf("📍 %s\nCoordinates: %g, %g", place.DisplayName(), place.Lat, place.Lon))
}

// coordinate picks explicit lat/lon when both are present, otherwise
// delegates to the resolver.
func (d *Dispatcher) coordinate(ctx context.Context, location string, lat, lon *float64) weather.Coordinate {
	if lat != nil && lon != nil {
		return weather.Coordinate{Lat: *lat, Lon: *lon}
	}
	return d.resolver.Resolve(ctx, location)
}

// decode unmarshals and validates an argument bag into a typed request.
// On failure it returns a user-facing message and false.
func (d *Dispatcher) decode(args json.RawMessage, req any) (string, bool) {
	if len(args) > 0 {
		if err := json.Unmarshal(args, req); err != nil {
			return "invalid arguments: " + err.Error(), false
		}
	}
	if err := d.validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			e := errs[0]
			if e.Tag() == "required" {
				return fmt.Sprintf("missing required argument %q", e.Field()), false
			}
			return fmt.Sprintf("invalid argument %q: failed %s check", e.Field(), e.Tag()), false
		}
		return "invalid arguments: " + err.Error(), false
	}
	return "", true
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + text}},
		IsError: true,
	}
}
