package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8001" {
		t.Errorf("default port = %q, want 8001", cfg.Server.Port)
	}
	if cfg.Presence.OfflineThreshold != 2*time.Minute {
		t.Errorf("offline threshold = %v, want 2m", cfg.Presence.OfflineThreshold)
	}
	if cfg.Defaults.Lat != 51.2879 || cfg.Defaults.Lng != 7.2954 {
		t.Errorf("default location = %v/%v, want 51.2879/7.2954", cfg.Defaults.Lat, cfg.Defaults.Lng)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PRESENCE_OFFLINE_THRESHOLD", "90")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_LAT", "50.5")

	cfg := Load()

	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Server.Port)
	}
	// Bare numbers are interpreted as seconds.
	if cfg.Presence.OfflineThreshold != 90*time.Second {
		t.Errorf("offline threshold = %v, want 90s", cfg.Presence.OfflineThreshold)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Defaults.Lat != 50.5 {
		t.Errorf("default lat = %v, want 50.5", cfg.Defaults.Lat)
	}
}

func TestParseDurationFallback(t *testing.T) {
	if d := parseDuration("garbage", time.Minute); d != time.Minute {
		t.Errorf("parseDuration fallback = %v, want 1m", d)
	}
}
