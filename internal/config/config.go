// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends accepted by LIVECONFIG_STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string        `env:"LIVECONFIG_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	StorageBackend string        `env:"LIVECONFIG_STORAGE_BACKEND" envDefault:"sqlite"`
	DBPath         string        `env:"LIVECONFIG_DB_PATH" envDefault:"liveconfig.db"`
	StoragePath    string        `env:"LIVECONFIG_STORAGE_PATH" envDefault:".storage/live_config"`
	StorageWatch   bool          `env:"LIVECONFIG_STORAGE_WATCH" envDefault:"true"`
	SecretKeyHex   string        `env:"LIVECONFIG_SECRET_KEY"`
	GeminiBaseURL  string        `env:"LIVECONFIG_GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiTimeout  time.Duration `env:"LIVECONFIG_GEMINI_TIMEOUT" envDefault:"10s"`

	// SecretKey is the decoded LIVECONFIG_SECRET_KEY, nil when unset.
	SecretKey []byte
}

// Load reads configuration from environment variables and returns a validated Config.
// LIVECONFIG_SECRET_KEY is optional; when set it must be 64 hex characters
// (a 32-byte AES-256 key) and the stored API key is encrypted with it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendSQLite, BackendJSONFile:
	default:
		return nil, fmt.Errorf("LIVECONFIG_STORAGE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendJSONFile, cfg.StorageBackend)
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("LIVECONFIG_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("LIVECONFIG_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}

	if cfg.GeminiTimeout <= 0 {
		return nil, fmt.Errorf("LIVECONFIG_GEMINI_TIMEOUT must be positive, got %s", cfg.GeminiTimeout)
	}

	return &cfg, nil
}

// HasSecretKey reports whether API key encryption is enabled.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}
