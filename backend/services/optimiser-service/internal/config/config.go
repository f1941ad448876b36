package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "greenshift/backend/libs/config"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Engine   EngineConfig   `yaml:"engine"`
	Feed     FeedConfig     `yaml:"feed"`
	Seed     SeedConfig     `yaml:"seed"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"OPTIMISER_HTTP_PORT"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"OPTIMISER_POSTGRES_DSN"`
}

// RedisConfig configures the report cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"OPTIMISER_REDIS_ADDR"`
	Password   string `yaml:"password" env:"OPTIMISER_REDIS_PASSWORD"`
	DB         int    `yaml:"db" env:"OPTIMISER_REDIS_DB"`
	TTLMinutes int    `yaml:"ttlMinutes" env:"OPTIMISER_REDIS_TTL_MINUTES"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"OPTIMISER_JWT_SECRET"`
}

// EngineConfig carries the scenario engine knobs.
type EngineConfig struct {
	PeakStartHour int `yaml:"peakStartHour" env:"OPTIMISER_PEAK_START_HOUR"`
	PeakEndHour   int `yaml:"peakEndHour" env:"OPTIMISER_PEAK_END_HOUR"`
	SlotMinutes   int `yaml:"slotMinutes" env:"OPTIMISER_SLOT_MINUTES"`
	WindowDays    int `yaml:"windowDays" env:"OPTIMISER_WINDOW_DAYS"`
}

// FeedConfig controls the synthetic realtime meter feed.
type FeedConfig struct {
	Enabled     bool    `yaml:"enabled" env:"OPTIMISER_FEED_ENABLED"`
	MpanID      string  `yaml:"mpanId" env:"OPTIMISER_FEED_MPAN_ID"`
	TickSeconds int     `yaml:"tickSeconds" env:"OPTIMISER_FEED_TICK_SECONDS"`
	BaseLoadKW  float64 `yaml:"baseLoadKw" env:"OPTIMISER_FEED_BASE_LOAD_KW"`
}

type SeedConfig struct {
	Dir string `yaml:"dir" env:"OPTIMISER_SEED_DIR"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:   HTTPConfig{Port: "8081"},
		Redis:  RedisConfig{TTLMinutes: 15},
		Engine: EngineConfig{PeakStartHour: 16, PeakEndHour: 19, SlotMinutes: 30, WindowDays: 7},
		Feed:   FeedConfig{TickSeconds: 5, BaseLoadKW: 0.8},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.Engine.PeakStartHour < 0 || cfg.Engine.PeakEndHour > 24 ||
		cfg.Engine.PeakStartHour >= cfg.Engine.PeakEndHour {
		return nil, fmt.Errorf("config: invalid peak window %d..%d",
			cfg.Engine.PeakStartHour, cfg.Engine.PeakEndHour)
	}
	if cfg.Engine.SlotMinutes <= 0 {
		cfg.Engine.SlotMinutes = 30
	}
	if cfg.Feed.Enabled && cfg.Feed.MpanID == "" {
		return nil, errors.New("config: feed mpan id is required when feed is enabled")
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SlotDuration converts the configured slot length to a duration.
func (c *Config) SlotDuration() time.Duration {
	return time.Duration(c.Engine.SlotMinutes) * time.Minute
}

// CacheTTL converts the configured cache expiry to a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}

// FeedTick converts the configured feed interval to a duration.
func (c *Config) FeedTick() time.Duration {
	if c.Feed.TickSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Feed.TickSeconds) * time.Second
}
