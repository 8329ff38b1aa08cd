package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"clt400tt-terminal/config"
	"clt400tt-terminal/internal/api"
	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/session"
	"clt400tt-terminal/internal/settings"
)

func main() {
	// A .env file is optional; environment wins either way.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	logger := newLogger(cfg.Log)
	logger.Info().Str("config", configPath).Msg("configuration loaded")

	store, err := settings.Open(cfg.Settings.CachePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings cache")
	}

	client := colet.NewClient(cfg.Colet.BaseURL, cfg.Colet.Timeout, logger)
	lookups := lookup.NewServices(client)
	settingsCache := settings.NewCache(client, store, logger)
	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.Cleanup)

	deps := evento.Deps{
		Client:   client,
		Lookups:  lookups,
		Settings: settingsCache,
		Log:      logger,
	}

	router := api.NewRouter(cfg, deps, sessions)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = cfg.Server.AllowedOrigins
	} else {
		corsOptions.AllowOriginFunc = func(string) bool { return true }
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: cors.New(corsOptions).Handler(router),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("colet", cfg.Colet.BaseURL).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server Shutdown")
	}

	logger.Info().Msg("server gracefully stopped")
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger
}
