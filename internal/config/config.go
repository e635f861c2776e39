package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	EventTopic   string

	Casdoor CasdoorConfig

	// ExamTimezone is the single reference timezone for the one-calendar-day
	// availability window. IANA name, never host-local time.
	ExamTimezone string

	// ExpirySweepSpec is the cron spec for the assignment expiry sweep.
	ExpirySweepSpec string
}

// LoadConfig reads configuration from the environment, with .env support for
// local development.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		EventTopic:      getEnv("EVENT_TOPIC", "testprep.notifications"),
		ExamTimezone:    getEnv("EXAM_TIMEZONE", "Asia/Kolkata"),
		ExpirySweepSpec: getEnv("EXPIRY_SWEEP_SPEC", "0 5 * * *"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := time.LoadLocation(cfg.ExamTimezone); err != nil {
		return nil, fmt.Errorf("invalid EXAM_TIMEZONE %q: %w", cfg.ExamTimezone, err)
	}

	return cfg, nil
}

// ExamLocation resolves the configured exam timezone.
func (c *Config) ExamLocation() *time.Location {
	loc, err := time.LoadLocation(c.ExamTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
