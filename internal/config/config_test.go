package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  reset_timezone: "Europe/Kyiv"
  rate_per_minute: 99
  boost_duration: 45m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.ResetTimezone != "Europe/Kyiv" {
		t.Fatalf("unexpected reset timezone: %s", cfg.Limits.ResetTimezone)
	}
	if cfg.Limits.RatePerMinute != 99 {
		t.Fatalf("unexpected rate per minute: %d", cfg.Limits.RatePerMinute)
	}
	if cfg.Limits.BoostDuration.String() != "45m0s" {
		t.Fatalf("unexpected boost duration: %s", cfg.Limits.BoostDuration)
	}

	if cfg.Limits.RatePer10Seconds != 12 {
		t.Fatalf("rate_per_10sec default should stay 12, got %d", cfg.Limits.RatePer10Seconds)
	}
	if cfg.Postgres.MaxConns != 8 {
		t.Fatalf("postgres max_conns default should stay 8, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Auth.JWTAccessTTL.String() != "15m0s" {
		t.Fatalf("unexpected jwt access ttl default: %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.ResetTimezone != "UTC" {
		t.Fatalf("unexpected default reset timezone: %s", cfg.Limits.ResetTimezone)
	}
	if cfg.Limits.SweepInterval.String() != "1h0m0s" {
		t.Fatalf("unexpected default sweep interval: %s", cfg.Limits.SweepInterval)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("RESET_TIMEZONE", "America/New_York")
	t.Setenv("RATE_PER_MINUTE", "7")
	t.Setenv("BOOST_DURATION", "1h")
	t.Setenv("POSTGRES_MAX_CONNS", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Limits.ResetTimezone != "America/New_York" {
		t.Fatalf("unexpected reset timezone: %s", cfg.Limits.ResetTimezone)
	}
	if cfg.Limits.RatePerMinute != 7 {
		t.Fatalf("unexpected rate per minute: %d", cfg.Limits.RatePerMinute)
	}
	if cfg.Limits.BoostDuration.String() != "1h0m0s" {
		t.Fatalf("unexpected boost duration: %s", cfg.Limits.BoostDuration)
	}
	if cfg.Postgres.MaxConns != 3 {
		t.Fatalf("unexpected postgres max_conns: %d", cfg.Postgres.MaxConns)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SWEEP_INTERVAL", "often")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected parse error for bad duration")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"POSTGRES_MAX_CONNS",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"RESET_TIMEZONE",
		"RATE_PER_MINUTE",
		"RATE_PER_10SEC",
		"BOOST_DURATION",
		"SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}
