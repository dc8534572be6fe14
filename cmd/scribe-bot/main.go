package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/scribe/internal/browser"
	"github.com/scribeworks/scribe/internal/bus"
	"github.com/scribeworks/scribe/internal/config"
	"github.com/scribeworks/scribe/internal/meet"
	"github.com/scribeworks/scribe/internal/session"
	"github.com/scribeworks/scribe/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if cfg.MeetingURL == "" {
		slog.Error("MEETING_URL is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.ChromeProfileDir == "" {
		slog.Error("CHROME_PROFILE_DIR is required — the bot needs a signed-in Chrome profile")
		os.Exit(1)
	}

	meetingID := uuid.New()
	slog.Info("scribe-bot starting",
		"meeting_url", cfg.MeetingURL,
		"job_id", cfg.JobID,
		"meeting_id", meetingID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Create the transcript record up front so the meeting is visible even if
	// nobody ever speaks.
	createdAt := time.Now().UTC()
	if err := db.UpsertTranscriptSegments(ctx, meetingID, createdAt, nil, true); err != nil {
		slog.Error("failed to create transcript record", "error", err)
		os.Exit(1)
	}

	// Completion reporting. NATS connects in the background and only fails
	// fast on a malformed URL, so a dead broker surfaces at publish time, not
	// here — the fallback wraps the publish path, not the connect.
	var notifier session.Notifier
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		if cfg.BackendURL == "" {
			slog.Error("failed to connect to NATS and no BACKEND_URL fallback", "error", err)
			os.Exit(1)
		}
		slog.Warn("NATS unavailable, reporting completion over http", "error", err)
		notifier = bus.NewHTTPNotifier(cfg.BackendURL, slog.Default())
	} else {
		defer busClient.Close()
		notifier = busClient
		if cfg.BackendURL != "" {
			notifier = bus.NewFallbackNotifier(busClient,
				bus.NewHTTPNotifier(cfg.BackendURL, slog.Default()), slog.Default())
		}
	}

	// Browser
	chrome, err := browser.NewChrome(ctx, browser.Options{
		Headless:   cfg.Headless,
		ProfileDir: cfg.ChromeProfileDir,
	})
	if err != nil {
		slog.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer chrome.Close()

	driver := meet.NewDriver(chrome, cfg.JoinTimeout, slog.Default())

	if err := driver.Join(ctx, cfg.MeetingURL); err != nil {
		slog.Error("failed to join meeting", "error", err)
		os.Exit(1)
	}
	if err := driver.EnableCaptions(ctx); err != nil {
		slog.Error("failed to enable captions", "error", err)
		os.Exit(1)
	}

	sess := session.New(session.Config{
		MeetingID:     meetingID,
		JobID:         cfg.JobID,
		CreatedAt:     createdAt,
		FlushInterval: cfg.FlushInterval,
		HardTimeout:   cfg.HardTimeout,
	}, db, driver, notifier, slog.Default())

	if err := driver.ObserveCaptions(ctx, sess.Ingest); err != nil {
		slog.Error("failed to observe captions", "error", err)
		os.Exit(1)
	}

	if err := sess.Run(ctx); err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}

	slog.Info("scribe-bot done", "meeting_id", meetingID)
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
