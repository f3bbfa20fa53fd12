package config

import (
	"testing"
	"time"
)

func TestLoadCommitmentDefaults(t *testing.T) {
	for _, key := range []string{
		"COMMITMENT_ENABLED", "COMMITMENT_WINDOW_HOURS", "COMMITMENT_GRACE_MINUTES",
		"TICK_INTERVAL", "STARTUP_DELAY", "TICK_BATCH_LIMIT", "TRIP_TIMEZONE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadCommitment()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Enabled {
		t.Fatal("Enabled should default to true")
	}
	if cfg.WindowHours != 1 || cfg.GraceMinutes != 60 {
		t.Fatalf("window = %dh grace = %dm, want 1h / 60m", cfg.WindowHours, cfg.GraceMinutes)
	}
	if cfg.TickInterval != 5*time.Minute {
		t.Fatalf("TickInterval = %v, want 5m", cfg.TickInterval)
	}
	if cfg.StartupDelay != 3*time.Second {
		t.Fatalf("StartupDelay = %v, want 3s", cfg.StartupDelay)
	}
	if cfg.BatchLimit != 500 {
		t.Fatalf("BatchLimit = %d, want 500", cfg.BatchLimit)
	}
	if cfg.Timezone != "America/Phoenix" {
		t.Fatalf("Timezone = %q, want America/Phoenix", cfg.Timezone)
	}
}

func TestLoadCommitmentOverrides(t *testing.T) {
	t.Setenv("COMMITMENT_ENABLED", "false")
	t.Setenv("COMMITMENT_WINDOW_HOURS", "2")
	t.Setenv("COMMITMENT_GRACE_MINUTES", "30")
	t.Setenv("TICK_INTERVAL", "1m")
	t.Setenv("TICK_BATCH_LIMIT", "50")
	t.Setenv("TRIP_TIMEZONE", "UTC")

	cfg, err := LoadCommitment()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Enabled {
		t.Fatal("Enabled should be false")
	}
	if cfg.WindowHours != 2 || cfg.GraceMinutes != 30 {
		t.Fatalf("window = %dh grace = %dm, want 2h / 30m", cfg.WindowHours, cfg.GraceMinutes)
	}
	if cfg.TickInterval != time.Minute || cfg.BatchLimit != 50 || cfg.Timezone != "UTC" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadCommitmentRejectsInvalidValues(t *testing.T) {
	cases := []struct{ key, value string }{
		{"COMMITMENT_WINDOW_HOURS", "0"},
		{"COMMITMENT_WINDOW_HOURS", "soon"},
		{"COMMITMENT_GRACE_MINUTES", "-5"},
		{"TICK_INTERVAL", "sometimes"},
		{"TICK_BATCH_LIMIT", "0"},
		{"COMMITMENT_ENABLED", "maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := LoadCommitment(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
