package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.Generation.Model)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("default backend = %q", cfg.Store.Backend)
	}
	if cfg.Cache.TTL.Duration() != 24*time.Hour {
		t.Errorf("default TTL = %v", cfg.Cache.TTL.Duration())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[generation]
endpoint = "http://localhost:11434/v1"
model = "llama3"
api_key_env = "LOCAL_KEY"
temperature = 0.7
timeout = "30s"

[store]
backend = "redis"

[store.redis]
addr = "localhost:6379"
db = 2

[cache]
dir = "/tmp/pscache"
ttl = "1h"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Generation.Endpoint != "http://localhost:11434/v1" {
		t.Errorf("endpoint = %q", cfg.Generation.Endpoint)
	}
	if cfg.Generation.Model != "llama3" {
		t.Errorf("model = %q", cfg.Generation.Model)
	}
	if cfg.Generation.Timeout.Duration() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Generation.Timeout.Duration())
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Redis.Addr != "localhost:6379" || cfg.Store.Redis.DB != 2 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Cache.TTL.Duration() != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL.Duration())
	}

	// Unset sections keep defaults
	if cfg.Generation.APIKeyEnv != "LOCAL_KEY" {
		t.Errorf("api_key_env = %q", cfg.Generation.APIKeyEnv)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("generation = ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/explicit"
	dir, err := cfg.CacheDir()
	if err != nil || dir != "/explicit" {
		t.Errorf("CacheDir = %q, %v", dir, err)
	}

	cfg.Cache.Dir = ""
	dir, err = cfg.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir error: %v", err)
	}
	if filepath.Base(dir) != "promptstack" {
		t.Errorf("default cache dir = %q", dir)
	}
}
