package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(5*time.Second, zerolog.Nop(), WithEndpoints(srv.URL, srv.URL))
}

const currentBody = `{
	"latitude": 55.75, "longitude": 37.62, "timezone": "Europe/Moscow",
	"current": {
		"time": "2026-08-30T14:00", "temperature_2m": 21.3,
		"relative_humidity_2m": 45, "weather_code": 1,
		"wind_speed_10m": 3.4, "wind_direction_10m": 315, "pressure_msl": 1013.2
	}
}`

func TestFetchCurrent(t *testing.T) {
	var query url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(currentBody))
	}))

	payload, err := client.FetchCurrent(context.Background(), Coordinate{Lat: 55.75, Lon: 37.62}, "ru")
	require.NoError(t, err)

	assert.Equal(t, "55.75", query.Get("latitude"))
	assert.Equal(t, "37.62", query.Get("longitude"))
	assert.Equal(t, currentFields, query.Get("current"))
	assert.Equal(t, "auto", query.Get("timezone"))

	assert.Equal(t, 21.3, payload.Current.Temperature)
	assert.Equal(t, 1, payload.Current.WeatherCode)
	assert.Equal(t, 315.0, payload.Current.WindDirection)
	assert.Equal(t, 1013.2, payload.Current.PressureMSL)
}

func TestFetchForecastClampsDays(t *testing.T) {
	forecastBody := `{"latitude": 55.75, "longitude": 37.62, "daily": {"time": ["2026-08-30"]}}`

	for _, tc := range []struct {
		requested int
		want      string
	}{
		{requested: 0, want: "1"},
		{requested: -3, want: "1"},
		{requested: 3, want: "3"},
		{requested: 16, want: "16"},
		{requested: 30, want: "16"},
	} {
		var query url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			w.Write([]byte(forecastBody))
		}))

		_, err := client.FetchForecast(context.Background(), Coordinate{Lat: 55.75, Lon: 37.62}, tc.requested, "ru")
		require.NoError(t, err)
		assert.Equal(t, tc.want, query.Get("forecast_days"), "requested %d days", tc.requested)
		assert.Equal(t, dailyFields, query.Get("daily"))
	}
}

func TestStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"reason":"invalid latitude"}`, wantErr: ErrInvalidRequest},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrUpstreamUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: ErrUpstreamUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, tc.status)
			}))

			_, err := client.FetchCurrent(context.Background(), Coordinate{}, "en")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUnexpectedStatusReturnsAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))

	_, err := client.FetchCurrent(context.Background(), Coordinate{}, "en")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "teapot")
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(time.Second, zerolog.Nop(), WithEndpoints(srv.URL, srv.URL))
	srv.Close()

	_, err := client.FetchCurrent(context.Background(), Coordinate{}, "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestGeocode(t *testing.T) {
	var query url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"results":[{"latitude":55.75,"longitude":37.62,"name":"Moscow","country":"Russia","admin1":"Moscow"}]}`))
	}))

	place, err := client.Geocode(context.Background(), "Moscow", "en")
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Moscow", query.Get("name"))
	assert.Equal(t, "1", query.Get("count"))
	assert.Equal(t, "en", query.Get("language"))
	assert.Equal(t, "json", query.Get("format"))

	assert.Equal(t, 55.75, place.Lat)
	assert.Equal(t, 37.62, place.Lon)
	assert.Equal(t, "Moscow, Russia", place.DisplayName())
}

func TestGeocodeNoMatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))

	place, err := client.Geocode(context.Background(), "Atlantis", "en")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestGeocodeNon200IsSoft(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	place, err := client.Geocode(context.Background(), "Moscow", "en")
	require.NoError(t, err)
	assert.Nil(t, place)
}
