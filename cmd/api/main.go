package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/profit-report/internal/api"
	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/fetch"
	"github.com/dvloznov/profit-report/internal/logger"
	"github.com/dvloznov/profit-report/internal/pipeline"
	"github.com/dvloznov/profit-report/internal/presentation"
)

func main() {
	// Parse command-line flags
	var (
		configDir = flag.String("config", ".", "Directory containing config.yaml and .env")
		port      = flag.Int("port", 0, "HTTP server port (overrides server.port)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Initialize logger
	log := logger.NewWithFormat(cfg.LogFormat, cfg.LogLevel)

	resolver := fetch.NewResolver(cfg.Source, cfg.Sheets)
	fetcher := fetch.NewDefaultFetcher(cfg.Source, log)
	svc := pipeline.NewService(resolver, fetcher, pipeline.OptionsFromConfig(cfg), log)

	server := api.New(api.Config{
		Port:      cfg.Server.Port,
		Log:       log,
		Service:   svc,
		Presenter: presentation.NewPresenterFromConfig(cfg),
	})

	log.Info().
		Str("source", cfg.Source.Kind).
		Strs("sheets", cfg.Sheets).
		Dur("fetch_timeout", cfg.Source.Timeout).
		Msg("Configuration loaded")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
