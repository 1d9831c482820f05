package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	forecastURL  = "https://api.open-meteo.com/v1/forecast"
	geocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	// The commercial deployment variant uses the customer endpoints and
	// authenticates with an API key.
	commercialForecastURL  = "https://customer-api.open-meteo.com/v1/forecast"
	commercialGeocodingURL = "https://customer-geocoding-api.open-meteo.com/v1/search"

	currentFields = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,wind_direction_10m,pressure_msl"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,relative_humidity_2m_max"

	// MaxForecastDays is the documented Open-Meteo maximum.
	MaxForecastDays = 16

	maxBodyExcerpt = 512
)

// Client fetches forecasts and geocoding results from Open-Meteo.
// Forecast requests go through a circuit breaker so that a struggling
// upstream degrades to fast failures instead of piling up timeouts.
type Client struct {
	forecastURL  string
	geocodingURL string
	apiKey       string
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
	log          zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey switches the client to the commercial endpoints, which
// require an API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
		c.forecastURL = commercialForecastURL
		c.geocodingURL = commercialGeocodingURL
	}
}

// WithEndpoints overrides both API base URLs. Used in tests.
func WithEndpoints(forecast, geocoding string) ClientOption {
	return func(c *Client) {
		c.forecastURL = forecast
		c.geocodingURL = geocoding
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client whose requests are bounded by timeout.
func NewClient(timeout time.Duration, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log.With().Str("component", "openmeteo").Logger(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCurrent retrieves current conditions for the coordinate.
func (c *Client) FetchCurrent(ctx context.Context, coord Coordinate, lang string) (*CurrentPayload, error) {
	params := url.Values{}
	params.Set("latitude", formatFloat(coord.Lat))
	params.Set("longitude", formatFloat(coord.Lon))
	params.Set("current", currentFields)
	params.Set("timezone", "auto")

	body, err := c.doForecast(ctx, params)
	if err != nil {
		return nil, err
	}
	var payload CurrentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode current weather response: %w", err)
	}
	return &payload, nil
}

// FetchForecast retrieves a daily forecast. days is clamped to
// [1, MaxForecastDays] before the request is issued.
func (c *Client) FetchForecast(ctx context.Context, coord Coordinate, days int, lang string) (*ForecastPayload, error) {
	days = ClampDays(days)

	params := url.Values{}
	params.Set("latitude", formatFloat(coord.Lat))
	params.Set("longitude", formatFloat(coord.Lon))
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	body, err := c.doForecast(ctx, params)
	if err != nil {
		return nil, err
	}
	var payload ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}
	return &payload, nil
}

// Geocode looks up the single best match for a place name. It returns
// (nil, nil) when nothing matched or the geocoding API answered with a
// non-200 status; geocoding is a soft dependency and its failures are
// logged rather than raised where possible.
func (c *Client) Geocode(ctx context.Context, name, lang string) (*Place, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", lang)
	params.Set("format", "json")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("name", name).Msg("geocoding request failed")
		return nil, nil
	}

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	r := payload.Results[0]
	place := &Place{
		Coordinate: Coordinate{Lat: r.Latitude, Lon: r.Longitude},
		Name:       r.Name,
		Country:    r.Country,
		Admin1:     r.Admin1,
	}
	if place.Name == "" {
		place.Name = name
	}
	return place, nil
}

// ClampDays bounds a forecast length to [1, MaxForecastDays].
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

// doForecast issues a forecast-endpoint request through the circuit
// breaker and maps the outcome onto the error taxonomy.
func (c *Client) doForecast(ctx context.Context, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUpstreamUnavailable)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// do executes a single request and maps the HTTP status onto the error
// taxonomy: 200 body, 400 ErrInvalidRequest, 429 ErrRateLimited,
// 5xx ErrUpstreamUnavailable, anything else *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest:
		c.log.Error().Int("status", resp.StatusCode).Str("body", excerpt(body)).Msg("upstream rejected request")
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, excerpt(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, ErrUpstreamUnavailable
	default:
		c.log.Error().Int("status", resp.StatusCode).Str("body", excerpt(body)).Msg("unexpected upstream status")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return string(body)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
