package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Backend (scribed)
	Port        int
	DatabaseURL string
	NatsURL     string
	NatsToken   string
	LogLevel    string

	OpenAIAPIKey string
	OpenAIModel  string

	BotImage      string
	BotNetwork    string
	BotProfileDir string
	BackendURL    string

	// Bot (scribe-bot)
	MeetingURL       string
	JobID            string
	ChromeProfileDir string
	Headless         bool

	FlushInterval time.Duration
	HardTimeout   time.Duration
	JoinTimeout   time.Duration
}

func Load() Config {
	return Config{
		Port:        envInt("SCRIBED_PORT", 8640),
		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),

		OpenAIAPIKey: envStr("OPENAI_API_KEY", ""),
		OpenAIModel:  envStr("SCRIBE_MODEL", "gpt-4.1"),

		BotImage:      envStr("SCRIBE_BOT_IMAGE", "scribe-bot"),
		BotNetwork:    envStr("SCRIBE_BOT_NETWORK", "scribe-net"),
		BotProfileDir: envStr("SCRIBE_BOT_PROFILE_DIR", ""),
		BackendURL:    envStr("BACKEND_URL", ""),

		MeetingURL:       envStr("MEETING_URL", ""),
		JobID:            envStr("JOB_ID", ""),
		ChromeProfileDir: envStr("CHROME_PROFILE_DIR", ""),
		Headless:         envBool("SCRIBE_HEADLESS", true),

		FlushInterval: envDuration("SCRIBE_FLUSH_INTERVAL", time.Second),
		HardTimeout:   envDuration("SCRIBE_HARD_TIMEOUT", 100*time.Minute),
		JoinTimeout:   envDuration("SCRIBE_JOIN_TIMEOUT", 60*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
