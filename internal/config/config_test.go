package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  session_ttl: 30m
gemini:
  api_key: from-file
  model: gemini-2.5-pro
upload:
  max_bytes: 1024
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Upload.MaxBytes != 1024 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Gemini.APIKey != "from-file" || cfg.Gemini.Model != "gemini-2.5-pro" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected gemini/log config %+v", cfg)
	}
	if got := TTLDuration(cfg.Redis.SessionTTL, time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Fatalf("expected env api key, got %q", cfg.Gemini.APIKey)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
}
