package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Get returns the value of an environment variable, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt is like Get but parses the value as an integer.
func GetInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	return n, nil
}

// GetBool is like Get but parses the value with strconv.ParseBool.
func GetBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// GetDuration is like Get but parses the value with time.ParseDuration.
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration, got %q", key, v)
	}
	return d, nil
}

// Commitment holds the tunables of the pickup-route commitment scheduler.
// Defaults: a one-hour commitment window with a one-hour grace period, a
// five-minute tick, and a 500-booking batch cap.
type Commitment struct {
	Enabled      bool
	WindowHours  int
	GraceMinutes int
	TickInterval time.Duration
	StartupDelay time.Duration
	BatchLimit   int
	Timezone     string
}

// LoadCommitment reads the commitment scheduler configuration from the
// environment. Invalid values fail loading rather than silently misbehaving;
// fully unset configuration yields the defaults above.
func LoadCommitment() (Commitment, error) {
	enabled, err := GetBool("COMMITMENT_ENABLED", true)
	if err != nil {
		return Commitment{}, err
	}

	windowHours, err := GetInt("COMMITMENT_WINDOW_HOURS", 1)
	if err != nil {
		return Commitment{}, err
	}
	if windowHours <= 0 {
		return Commitment{}, fmt.Errorf("config: COMMITMENT_WINDOW_HOURS must be strictly positive, got %d", windowHours)
	}

	graceMinutes, err := GetInt("COMMITMENT_GRACE_MINUTES", 60)
	if err != nil {
		return Commitment{}, err
	}
	if graceMinutes < 0 {
		return Commitment{}, fmt.Errorf("config: COMMITMENT_GRACE_MINUTES must not be negative, got %d", graceMinutes)
	}

	tick, err := GetDuration("TICK_INTERVAL", 5*time.Minute)
	if err != nil {
		return Commitment{}, err
	}

	delay, err := GetDuration("STARTUP_DELAY", 3*time.Second)
	if err != nil {
		return Commitment{}, err
	}

	batch, err := GetInt("TICK_BATCH_LIMIT", 500)
	if err != nil {
		return Commitment{}, err
	}
	if batch < 1 {
		return Commitment{}, fmt.Errorf("config: TICK_BATCH_LIMIT must be at least 1, got %d", batch)
	}

	return Commitment{
		Enabled:      enabled,
		WindowHours:  windowHours,
		GraceMinutes: graceMinutes,
		TickInterval: tick,
		StartupDelay: delay,
		BatchLimit:   batch,
		Timezone:     Get("TRIP_TIMEZONE", "America/Phoenix"),
	}, nil
}
