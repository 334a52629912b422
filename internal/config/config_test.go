package config_test

import (
	"testing"

	"tickets/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tickets")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr: got %q, want :8080", cfg.Addr)
	}
	if cfg.DailyLimit != 5 {
		t.Errorf("DailyLimit: got %d, want 5", cfg.DailyLimit)
	}
	if cfg.DailyResetAt != "00:00" {
		t.Errorf("DailyResetAt: got %q, want 00:00", cfg.DailyResetAt)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tickets")
	t.Setenv("ADDR", ":9090")
	t.Setenv("DAILY_LIMIT", "12")
	t.Setenv("DAILY_RESET_AT", "03:30")
	t.Setenv("ADMIN_TOKEN", "hunter2")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.DailyLimit != 12 || cfg.DailyResetAt != "03:30" || cfg.AdminToken != "hunter2" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestParse_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := config.Parse(); err == nil {
		t.Fatal("expected an error for a missing DATABASE_URL")
	}
}

func TestParse_NegativeDailyLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tickets")
	t.Setenv("DAILY_LIMIT", "-1")

	if _, err := config.Parse(); err == nil {
		t.Fatal("expected an error for a negative DAILY_LIMIT")
	}
}
