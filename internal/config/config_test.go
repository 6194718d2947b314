package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "key")
	t.Setenv("AUTH_JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.HTTPTimeout != 0 || cfg.WarmupInterval != 0 {
		t.Fatalf("expected no timeout and no warmup, got %v / %v", cfg.HTTPTimeout, cfg.WarmupInterval)
	}
	if cfg.CitiesFile != "data/cities.json" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "OpenWeatherAPIKey") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestLoadAuthSecret(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "key")
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without AUTH_JWT_SECRET")
	}

	t.Setenv("AUTH_DISABLED", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AuthDisabled {
		t.Fatal("expected auth to be disabled")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_TTL", "five minutes")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "CACHE_TTL") {
		t.Fatalf("expected CACHE_TTL error, got %v", err)
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_TTL", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a zero cache ttl")
	}
}
