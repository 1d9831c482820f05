// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mcptools/weather-mcp/internal/weather"
)

// API variants. The free Open-Meteo tier needs no credentials; the
// commercial tier authenticates with an API key.
const (
	VariantFree       = "free"
	VariantCommercial = "commercial"
)

// Config holds the validated runtime settings.
type Config struct {
	// APIVariant selects the Open-Meteo deployment: VariantFree or
	// VariantCommercial. The commercial variant requires APIKey.
	APIVariant string
	APIKey     string

	// DefaultLang is the response language for geocoding lookups.
	DefaultLang string

	// DefaultLocation is the coordinate used when a tool call carries
	// no resolvable location.
	DefaultLocation weather.Coordinate

	// CacheTTL bounds the age of cached formatted results.
	CacheTTL time.Duration

	// RequestTimeout bounds each upstream HTTP request.
	RequestTimeout time.Duration

	LogLevel zerolog.Level
}

// Load reads configuration from the environment with sensible defaults,
// loading a .env file first when one exists. It fails on malformed values
// and on a commercial API variant without an API key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIVariant:  getenvDefault("WEATHER_API_VARIANT", VariantFree),
		APIKey:      os.Getenv("OPEN_METEO_API_KEY"),
		DefaultLang: getenvDefault("DEFAULT_LANG", "ru"),
	}

	// Moscow city centre.
	locStr := getenvDefault("DEFAULT_LOCATION", "55.75396,37.620393")
	loc, err := weather.ParseCoordinate(locStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LOCATION: %w", err)
	}
	cfg.DefaultLocation = loc

	cfg.CacheTTL = time.Duration(getenvInt("CACHE_TTL", 600)) * time.Second
	cfg.RequestTimeout = time.Duration(getenvInt("REQUEST_TIMEOUT", 10)) * time.Second

	level, err := zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.APIVariant {
	case VariantFree:
		// No API key required.
	case VariantCommercial:
		if c.APIKey == "" {
			return fmt.Errorf("WEATHER_API_VARIANT=%s requires OPEN_METEO_API_KEY", VariantCommercial)
		}
	default:
		return fmt.Errorf("unknown WEATHER_API_VARIANT %q", c.APIVariant)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
