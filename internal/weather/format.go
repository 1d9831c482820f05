package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// condition is a WMO weather interpretation code rendered for humans.
type condition struct {
	label  string
	symbol string
}

// wmoConditions maps WMO 4677 interpretation codes, the code table
// Open-Meteo reports, to a description and symbol.
var wmoConditions = map[int]condition{
	0:  {"clear sky", "☀️"},
	1:  {"mainly clear", "🌤️"},
	2:  {"partly cloudy", "⛅"},
	3:  {"overcast", "☁️"},
	45: {"fog", "🌫️"},
	48: {"depositing rime fog", "🌫️"},
	51: {"light drizzle", "🌦️"},
	53: {"moderate drizzle", "🌦️"},
	55: {"dense drizzle", "🌦️"},
	56: {"light freezing drizzle", "🌨️"},
	57: {"dense freezing drizzle", "🌨️"},
	61: {"slight rain", "🌧️"},
	63: {"moderate rain", "🌧️"},
	65: {"heavy rain", "🌧️"},
	66: {"light freezing rain", "🌨️"},
	67: {"heavy freezing rain", "🌨️"},
	71: {"slight snowfall", "❄️"},
	73: {"moderate snowfall", "❄️"},
	75: {"heavy snowfall", "❄️"},
	77: {"snow grains", "❄️"},
	80: {"slight rain showers", "🌧️"},
	81: {"moderate rain showers", "🌧️"},
	82: {"violent rain showers", "🌧️"},
	85: {"slight snow showers", "❄️"},
	86: {"heavy snow showers", "❄️"},
	95: {"thunderstorm", "⛈️"},
	96: {"thunderstorm with slight hail", "⛈️"},
	99: {"thunderstorm with heavy hail", "⛈️"},
}

var unknownCondition = condition{"unknown conditions", "🌤️"}

// compassNames lists the eight wind sectors clockwise from north.
var compassNames = [8]string{
	"northern", "northeastern", "eastern", "southeastern",
	"southern", "southwestern", "western", "northwestern",
}

// rain codes call for an umbrella, snow codes for warm boots,
// thunderstorm codes for caution.
var (
	rainCodes    = map[int]bool{51: true, 53: true, 55: true, 56: true, 57: true, 61: true, 63: true, 65: true, 66: true, 67: true, 80: true, 81: true, 82: true}
	snowCodes    = map[int]bool{71: true, 73: true, 75: true, 77: true, 85: true, 86: true}
	thunderCodes = map[int]bool{95: true, 96: true, 99: true}
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━"

// Condition returns the description and symbol for a WMO weather code.
func Condition(code int) (string, string) {
	c, ok := wmoConditions[code]
	if !ok {
		c = unknownCondition
	}
	return c.label, c.symbol
}

// WindDirection names the compass sector for a bearing in degrees.
func WindDirection(degrees float64) string {
	deg := degrees
	for deg < 0 {
		deg += 360
	}
	idx := int((deg+22.5)/45) % 8
	return compassNames[idx]
}

// FormatCurrent renders a current-conditions payload as display text.
func FormatCurrent(p *CurrentPayload) string {
	cur := p.Current
	label, symbol := Condition(cur.WeatherCode)
	location := fmt.Sprintf("%.2f°N, %.2f°E", p.Latitude, p.Longitude)
	pressureMMHg := int(math.Round(cur.PressureMSL * 0.750062))

	updatedAt := time.Now().Format("15:04")
	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		updatedAt = t.Format("15:04")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Weather at %s\n", symbol, location)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "🌡️  Temperature: %d°C\n", int(math.Round(cur.Temperature)))
	fmt.Fprintf(&b, "☁️  Conditions: %s\n", label)
	fmt.Fprintf(&b, "💧 Humidity: %.0f%%\n", cur.Humidity)
	fmt.Fprintf(&b, "📊 Pressure: %d mmHg\n", pressureMMHg)
	fmt.Fprintf(&b, "💨 Wind: %.1f m/s, %s\n", cur.WindSpeed, WindDirection(cur.WindDirection))
	fmt.Fprintf(&b, "🕐 Updated: %s\n\n", updatedAt)
	fmt.Fprintf(&b, "💡 Tip: %s", recommendation(cur.Temperature, cur.WeatherCode))
	return b.String()
}

// FormatForecast renders a daily forecast payload as display text,
// limited to the requested number of days.
func FormatForecast(p *ForecastPayload, days int) string {
	location := fmt.Sprintf("%.2f°N, %.2f°E", p.Latitude, p.Longitude)
	n := len(p.Daily.Time)
	if days < n {
		n = days
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Weather forecast at %s for %d days\n", location, n)
	b.WriteString(divider + "\n\n")

	for i := 0; i < n; i++ {
		date := p.Daily.Time[i]
		weekday := ""
		if t, err := time.Parse("2006-01-02", date); err == nil {
			date = t.Format("02.01.2006")
			weekday = " (" + t.Format("Mon") + ")"
		}

		label, symbol := Condition(dayAt(p.Daily.WeatherCode, i))
		fmt.Fprintf(&b, "%s %s%s\n", symbol, date, weekday)
		fmt.Fprintf(&b, "   🌡️  %d°C / %d°C\n",
			int(math.Round(floatAt(p.Daily.TemperatureMin, i))),
			int(math.Round(floatAt(p.Daily.TemperatureMax, i))))
		fmt.Fprintf(&b, "   ☁️  %s\n", label)
		if prec := floatAt(p.Daily.PrecipitationSum, i); prec > 0 {
			fmt.Fprintf(&b, "   🌧️  Precipitation: %.1f mm\n", prec)
		}
		fmt.Fprintf(&b, "   💧 Humidity: %.0f%%\n\n", floatAt(p.Daily.HumidityMax, i))
	}
	return strings.TrimRight(b.String(), "\n")
}

// recommendation suggests clothing for a temperature band plus a
// precipitation-specific addendum.
func recommendation(temp float64, code int) string {
	var tip string
	switch {
	case temp < -10:
		tip = "Very cold! Wear warm winter clothing"
	case temp < 0:
		tip = "Cold. Wear a warm jacket"
	case temp < 10:
		tip = "Chilly. Take a jacket"
	case temp < 20:
		tip = "Take a light jacket or sweater"
	case temp < 25:
		tip = "Warm. Light clothing will be comfortable"
	default:
		tip = "Hot. Dress light"
	}

	switch {
	case rainCodes[code]:
		tip += " and be sure to take an umbrella! ☂️"
	case snowCodes[code]:
		tip += " and wear warm boots"
	case thunderCodes[code]:
		tip += " and be careful outside"
	}
	return tip
}

func floatAt(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func dayAt(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}
