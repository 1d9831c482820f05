// Package weather talks to the Open-Meteo forecast and geocoding APIs and
// renders their payloads as display text.
package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a latitude/longitude pair. Valid latitudes are [-90, 90],
// valid longitudes [-180, 180].
type Coordinate struct {
	Lat float64
	Lon float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// ParseCoordinate parses a "lat,lon" string such as "55.75,37.62".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate %q: want \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: bad latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: bad longitude: %w", s, err)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// CurrentPayload is the Open-Meteo response for a current-conditions request.
type CurrentPayload struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Timezone  string            `json:"timezone"`
	Current   CurrentConditions `json:"current"`
}

// CurrentConditions holds the fixed field set requested for current weather.
type CurrentConditions struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature_2m"`
	Humidity      float64 `json:"relative_humidity_2m"`
	WeatherCode   int     `json:"weather_code"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindDirection float64 `json:"wind_direction_10m"`
	PressureMSL   float64 `json:"pressure_msl"`
}

// ForecastPayload is the Open-Meteo response for a daily forecast request.
type ForecastPayload struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Timezone  string      `json:"timezone"`
	Daily     DailySeries `json:"daily"`
}

// DailySeries holds the parallel per-day arrays of a forecast response.
type DailySeries struct {
	Time             []string  `json:"time"`
	WeatherCode      []int     `json:"weather_code"`
	TemperatureMax   []float64 `json:"temperature_2m_max"`
	TemperatureMin   []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
	HumidityMax      []float64 `json:"relative_humidity_2m_max"`
}

// Place is a geocoding match.
type Place struct {
	Coordinate
	Name    string
	Country string
	Admin1  string
}

// DisplayName renders the place as "Name, Country", falling back to the
// admin1 region and finally the bare name.
func (p *Place) DisplayName() string {
	switch {
	case p.Country != "":
		return p.Name + ", " + p.Country
	case p.Admin1 != "":
		return p.Name + ", " + p.Admin1
	default:
		return p.Name
	}
}
