package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Scheduling
	// ReleaseInterval is the minimum spacing between dispatch attempts;
	// 32 minutes stays clear of platform rate limits while keeping a
	// human-plausible cadence. TickInterval is deliberately finer so the
	// gate, not the ticker, enforces the cadence.
	ReleaseInterval time.Duration
	TickInterval    time.Duration
	PublishTimeout  time.Duration

	// Platform adapters
	TwitterAPIURL      string
	TwitterBearerToken string
	TelegramAPIURL     string
	TelegramChatID     string
	WebhookURL         string

	// Maximum enqueue requests per second accepted by the HTTP API
	EnqueueRate int
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		ReleaseInterval: getDuration("RELEASE_INTERVAL", 32*time.Minute),
		TickInterval:    getDuration("TICK_INTERVAL", time.Minute),
		PublishTimeout:  getDuration("PUBLISH_TIMEOUT", 15*time.Second),

		TwitterAPIURL:      getEnv("TWITTER_API_URL", "https://api.twitter.com/2/tweets"),
		TwitterBearerToken: os.Getenv("TWITTER_BEARER_TOKEN"),
		TelegramAPIURL:     os.Getenv("TELEGRAM_API_URL"),
		TelegramChatID:     os.Getenv("TELEGRAM_CHAT_ID"),
		WebhookURL:         os.Getenv("WEBHOOK_URL"),

		EnqueueRate: getInt("ENQUEUE_RATE", 10),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
