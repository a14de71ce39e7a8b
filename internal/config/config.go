// Package config loads server configuration from an optional TOML file
// with environment variable overrides. Environment wins over file,
// file wins over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AuthConfig controls token issuance. TokenTTL is a Go duration string
// ("24h", "30m").
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"`
}

// TokenDuration parses TokenTTL, falling back to 24h on garbage.
func (a AuthConfig) TokenDuration() time.Duration {
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file and no
// environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/hearthledger.db",
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path
// (skipped when path is empty or the file does not exist), then
// environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required: set [auth].jwt_secret or JWT_SECRET")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		c.Auth.TokenTTL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
