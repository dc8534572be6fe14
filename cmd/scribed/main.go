package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/scribeworks/scribe/internal/api"
	"github.com/scribeworks/scribe/internal/bus"
	"github.com/scribeworks/scribe/internal/config"
	"github.com/scribeworks/scribe/internal/launcher"
	"github.com/scribeworks/scribe/internal/openai"
	"github.com/scribeworks/scribe/internal/processor"
	"github.com/scribeworks/scribe/internal/store"
	"github.com/scribeworks/scribe/internal/summarize"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("scribed starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Summarizer (optional — without a key jobs stop at transcript_saved)
	var summarizer processor.Summarizer
	if cfg.OpenAIAPIKey != "" {
		llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		summarizer = summarize.New(llm, slog.Default())
		slog.Info("summarizer ready", "model", cfg.OpenAIModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set — transcripts will be stored without meeting notes")
	}

	// Post-meeting pipeline
	proc := processor.New(db, summarizer, slog.Default())

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	if err := busClient.Subscribe(bus.SubjectMeetingCompleted, proc.HandleMeetingCompleted); err != nil {
		slog.Error("failed to subscribe to completion events", "error", err)
		os.Exit(1)
	}

	// Bot launcher
	bots := launcher.NewDocker(launcher.Options{
		Image:       cfg.BotImage,
		Network:     cfg.BotNetwork,
		DatabaseURL: cfg.DatabaseURL,
		NatsURL:     cfg.NatsURL,
		NatsToken:   cfg.NatsToken,
		BackendURL:  cfg.BackendURL,
		ProfileDir:  cfg.BotProfileDir,
	}, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, db, bots, proc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("scribed ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("scribed stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
