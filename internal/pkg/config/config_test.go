package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/utechnav/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("UTECHNAV_AIR_QUALITY_API_KEY", "test-key")

	cfg, err := config.Load("utechnav-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Providers.RequestTimeout() != 10*time.Second {
		t.Errorf("expected 10s provider timeout, got %s", cfg.Providers.RequestTimeout())
	}
	if cfg.AirQuality.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %q", cfg.AirQuality.APIKey)
	}
	if cfg.Telemetry.ServiceName != "utechnav-test" {
		t.Errorf("expected service name utechnav-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("UTECHNAV_AIR_QUALITY_API_KEY", "k")
	t.Setenv("UTECHNAV_PROVIDERS_TIMEOUT", "3")
	t.Setenv("UTECHNAV_DIRECTIONS_VALHALLA_URL", "http://valhalla:8002")

	cfg, err := config.Load("utechnav-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.Timeout != 3 {
		t.Errorf("expected timeout 3, got %d", cfg.Providers.Timeout)
	}
	if cfg.Directions.ValhallaURL != "http://valhalla:8002" {
		t.Errorf("expected overridden valhalla url, got %s", cfg.Directions.ValhallaURL)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("UTECHNAV_AIR_QUALITY_API_KEY", "")

	_, err := config.Load("utechnav-test")
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "air_quality.api_key") {
		t.Errorf("expected api key in error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "providers.timeout", "search.limit", "sessions.idle_ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
