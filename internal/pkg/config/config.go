package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	AirQuality AirQualityConfig `mapstructure:"air_quality"`
	Directions DirectionsConfig `mapstructure:"directions"`
	Search     SearchConfig     `mapstructure:"search"`
	Sessions   SessionsConfig   `mapstructure:"sessions"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ProvidersConfig struct {
	// Timeout is the per-call deadline in seconds for every upstream provider.
	Timeout int `mapstructure:"timeout"`
}

// RequestTimeout returns Timeout as a duration.
func (p ProvidersConfig) RequestTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

type AirQualityConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type DirectionsConfig struct {
	ValhallaURL string `mapstructure:"valhalla_url"`
	Alternates  int    `mapstructure:"alternates"`
}

type SearchConfig struct {
	NominatimURL string `mapstructure:"nominatim_url"`
	UserAgent    string `mapstructure:"user_agent"`
	Limit        int    `mapstructure:"limit"`
	CacheTTL     int    `mapstructure:"cache_ttl"`
}

type SessionsConfig struct {
	// IdleTTL is how long, in minutes, an untouched session survives.
	IdleTTL int `mapstructure:"idle_ttl"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file, and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("providers.timeout", 10)
	v.SetDefault("air_quality.base_url", "https://airquality.googleapis.com")
	v.SetDefault("air_quality.api_key", "")
	v.SetDefault("directions.valhalla_url", "http://localhost:8002")
	v.SetDefault("directions.alternates", 0)
	v.SetDefault("search.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("search.user_agent", "utechnav/1.0")
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.cache_ttl", 300)
	v.SetDefault("sessions.idle_ttl", 30)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: UTECHNAV_AIR_QUALITY_API_KEY → air_quality.api_key
	v.SetEnvPrefix("UTECHNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Providers.Timeout <= 0 {
		errs = append(errs, "providers.timeout must be positive")
	}
	if c.AirQuality.BaseURL == "" {
		errs = append(errs, "air_quality.base_url is required")
	}
	if c.AirQuality.APIKey == "" {
		errs = append(errs, "air_quality.api_key is required (set UTECHNAV_AIR_QUALITY_API_KEY)")
	}
	if c.Directions.ValhallaURL == "" {
		errs = append(errs, "directions.valhalla_url is required")
	}
	if c.Directions.Alternates < 0 {
		errs = append(errs, "directions.alternates must not be negative")
	}
	if c.Search.NominatimURL == "" {
		errs = append(errs, "search.nominatim_url is required")
	}
	if c.Search.Limit <= 0 || c.Search.Limit > 20 {
		errs = append(errs, fmt.Sprintf("search.limit must be 1-20, got %d", c.Search.Limit))
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, "sessions.idle_ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
