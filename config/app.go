package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// AppConfig holds process settings for the HTTP server. Values come from an
// optional TOML file (CONFIG_FILE) and are overridden by environment variables.
type AppConfig struct {
	Port            string        `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	LogLevel  string `toml:"log_level"`
	PrettyLog bool   `toml:"pretty_log"`

	// SettingsStore is "file" (default) or "postgres".
	SettingsStore string `toml:"settings_store"`
	SettingsFile  string `toml:"settings_file"`
	DatabaseDSN   string `toml:"database_dsn"`

	// RedisAddr enables the shared Redis cache when set.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	UpstreamTimeout time.Duration `toml:"upstream_timeout"`
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:            "8080",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		PrettyLog:       true,
		SettingsStore:   "file",
		SettingsFile:    "data/settings.json",
		UpstreamTimeout: 15 * time.Second,
	}
}

// LoadAppConfig reads CONFIG_FILE if set, then applies environment overrides.
func LoadAppConfig() (*AppConfig, error) {
	cfg := defaultAppConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.ShutdownTimeout = mustDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("LOG_PRETTY", cfg.PrettyLog)
	cfg.SettingsStore = getenv("SETTINGS_STORE", cfg.SettingsStore)
	cfg.SettingsFile = getenv("SETTINGS_FILE", cfg.SettingsFile)
	cfg.DatabaseDSN = getenv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getenvInt("REDIS_DB", cfg.RedisDB)
	cfg.UpstreamTimeout = mustDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)

	switch cfg.SettingsStore {
	case "file", "postgres":
	default:
		return nil, fmt.Errorf("unknown SETTINGS_STORE %q (want file or postgres)", cfg.SettingsStore)
	}
	if cfg.SettingsStore == "postgres" && cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required when SETTINGS_STORE=postgres")
	}

	return &cfg, nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
