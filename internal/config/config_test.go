package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadParsesSections(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
log:
  level: debug
auth:
  jwt_secret: s3cret
  token_ttl: 1h
game:
  default_timer_seconds: 20
  observation_delay: 3s
redis:
  addr: localhost:6379
  code_ttl: 6h
cors:
  allowed_origins: ["http://a.test", "http://b.test"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" || cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Game.DefaultTimerSeconds != 20 {
		t.Fatalf("expected timer 20, got %d", cfg.Game.DefaultTimerSeconds)
	}
	if got := TTLDuration(cfg.Game.ObservationDelay, time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s observation delay, got %s", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\nauth:\n  jwt_secret: from-file\n")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "QUIZ_TEST_ONLY_VAR=loaded\n")
	t.Setenv("QUIZ_TEST_ONLY_VAR", "")
	os.Unsetenv("QUIZ_TEST_ONLY_VAR")

	LoadEnv(path)
	if got := os.Getenv("QUIZ_TEST_ONLY_VAR"); got != "loaded" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad value, got %s", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
}
