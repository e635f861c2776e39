package config

import (
	"log/slog"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/testprep")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ExamTimezone != "Asia/Kolkata" {
		t.Errorf("ExamTimezone = %q", cfg.ExamTimezone)
	}
	if cfg.ExpirySweepSpec != "0 5 * * *" {
		t.Errorf("ExpirySweepSpec = %q", cfg.ExpirySweepSpec)
	}
	if loc := cfg.ExamLocation(); loc.String() != "Asia/Kolkata" {
		t.Errorf("ExamLocation = %v", loc)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoadConfig_RejectsBadTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/testprep")
	t.Setenv("EXAM_TIMEZONE", "Mars/Olympus")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
