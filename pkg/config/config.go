// Package config loads promptstack configuration from a TOML file.
//
// The config file lives at ~/.config/promptstack/config.toml and holds
// settings that outlive a single invocation: the generation endpoint and
// model, the state store backend, and cache tuning. Command-line flags
// always override config values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration tree.
type Config struct {
	Generation Generation `toml:"generation"`
	Store      Store      `toml:"store"`
	Cache      Cache      `toml:"cache"`
}

// Generation configures the model endpoint used by the generate command.
type Generation struct {
	// Endpoint is the base URL of an OpenAI-compatible chat completions API.
	Endpoint string `toml:"endpoint"`

	// Model names the model to request.
	Model string `toml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	// Temperature for generation requests.
	Temperature float64 `toml:"temperature"`

	// Timeout bounds a single generation request.
	Timeout duration `toml:"timeout"`
}

// Store selects and configures the state backend.
type Store struct {
	// Backend is one of "file", "memory", "redis", or "mongo".
	Backend string `toml:"backend"`

	// Path is the state file location for the file backend.
	Path string `toml:"path"`

	Redis RedisStore `toml:"redis"`
	Mongo MongoStore `toml:"mongo"`
}

// RedisStore configures the redis backend.
type RedisStore struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoStore configures the mongo backend.
type MongoStore struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Cache configures response and layout caching.
type Cache struct {
	// Dir is the cache directory. Empty means ~/.cache/promptstack.
	Dir string `toml:"dir"`

	// TTL bounds how long generation responses are reused. Zero means
	// entries never expire.
	TTL duration `toml:"ttl"`

	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
}

// duration wraps time.Duration for TOML ("30s", "24h").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped value.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Generation: Generation{
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			Timeout:     duration(60 * time.Second),
		},
		Store: Store{Backend: "file"},
		Cache: Cache{TTL: duration(24 * time.Hour)},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "promptstack", "config.toml"), nil
}

// Load reads configuration from path. If path is empty, the default
// location is used. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// CacheDir resolves the cache directory, defaulting under the user cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "promptstack"), nil
}
