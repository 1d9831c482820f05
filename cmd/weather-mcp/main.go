// Command weather-mcp serves weather tools over the MCP streamable HTTP
// transport, backed by the Open-Meteo forecast and geocoding APIs.
//
// Usage:
//
//	weather-mcp --host 0.0.0.0 --port 8000
//
// Clients connect to http://host:port/mcp; /healthz answers liveness
// probes.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcptools/weather-mcp/internal/cache"
	"github.com/mcptools/weather-mcp/internal/config"
	"github.com/mcptools/weather-mcp/internal/middleware"
	"github.com/mcptools/weather-mcp/internal/server"
	"github.com/mcptools/weather-mcp/internal/weather"
)

func main() {
	host := flag.String("host", "0.0.0.0", "host to bind the server to")
	port := flag.String("port", "8000", "port to bind the server to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(cfg.LogLevel)

	var clientOpts []weather.ClientOption
	if cfg.APIVariant == config.VariantCommercial {
		clientOpts = append(clientOpts, weather.WithAPIKey(cfg.APIKey))
	}
	client := weather.NewClient(cfg.RequestTimeout, log, clientOpts...)
	results := cache.New(cfg.CacheTTL)
	dispatcher := server.NewDispatcher(client, results, cfg.DefaultLang, cfg.DefaultLocation, log)
	mcpServer := server.New(dispatcher)

	// Sweep expired cache entries on the TTL cadence so memory is
	// reclaimed even when traffic stops hitting stale keys.
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.CacheTTL).Do(func() {
		if n := results.Cleanup(); n > 0 {
			log.Debug().Int("evicted", n).Msg("cache cleanup")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("schedule cache cleanup")
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	handler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return mcpServer },
		nil,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/mcp", handler)

	addr := net.JoinHostPort(*host, *port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Str("variant", cfg.APIVariant).Msg("weather MCP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
