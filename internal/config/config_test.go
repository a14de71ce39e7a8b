package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.Path != "./data/hearthledger.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./data/hearthledger.db")
	}
	if cfg.Auth.TokenDuration() != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h", cfg.Auth.TokenDuration())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
host = "127.0.0.1"
port = 9090

[database]
path = "/tmp/ledger.db"

[auth]
jwt_secret = "file-secret"
token_ttl = "2h"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Neutralize ambient overrides so the file values win.
	for _, key := range []string{"HOST", "PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q, want 127.0.0.1:9090", cfg.Server.Addr())
	}
	if cfg.Database.Path != "/tmp/ledger.db" {
		t.Errorf("Database.Path = %q, want /tmp/ledger.db", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("JWTSecret = %q, want file-secret", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenDuration() != 2*time.Hour {
		t.Errorf("TokenDuration = %v, want 2h", cfg.Auth.TokenDuration())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[auth]
jwt_secret = "file-secret"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("PORT", "3000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env override", cfg.Auth.JWTSecret)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Error("expected an error without a JWT secret")
	}

	t.Setenv("JWT_SECRET", "env-secret")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
}

func TestTokenDurationFallback(t *testing.T) {
	a := AuthConfig{TokenTTL: "not-a-duration"}
	if a.TokenDuration() != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h fallback", a.TokenDuration())
	}
}
