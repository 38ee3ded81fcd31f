package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
redis:
  addr: localhost:6379
generator:
  model: llama-3.3-70b-versatile
  timeout: 5s
rooms:
  idle_ttl: 30m
dedup:
  ttl: 24h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GENERATOR_API_KEY", "from-env")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port from yaml, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("expected env to override redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Generator.APIKey != "from-env" || cfg.Generator.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if got := TTLDuration(cfg.Rooms.IdleTTL, time.Hour); got != 30*time.Minute {
		t.Fatalf("expected 30m idle ttl, got %v", got)
	}
	if got := TTLDuration(cfg.Dedup.TTL, 0); got != 24*time.Hour {
		t.Fatalf("expected 24h dedup ttl, got %v", got)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/educraft")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://localhost/educraft" {
		t.Fatalf("expected postgres url from env, got %q", cfg.Postgres.URL)
	}
	if got := TTLDuration(cfg.Dedup.TTL, 0); got != 0 {
		t.Fatalf("expected dedup histories to default to no expiry, got %v", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", got)
	}
}
