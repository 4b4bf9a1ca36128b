// Package cli implements the promptstack command-line interface.
//
// The main commands are:
//   - import: Parse free-form text into a prompt graph
//   - validate: Check a graph against the structural invariants
//   - layout: Assign canvas positions to a graph
//   - compile: Linearize a graph into a prompt transcript
//   - generate: Ask a model to produce a graph from a request
//   - render: Draw a graph as a Graphviz diagram
//   - state: Show or reset the persisted working graph
//   - serve: Expose the pipeline over HTTP
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/buildinfo"
	"github.com/promptstack/promptstack/pkg/cache"
	"github.com/promptstack/promptstack/pkg/config"
	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/genai"
	"github.com/promptstack/promptstack/pkg/pipeline"
	"github.com/promptstack/promptstack/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "promptstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Promptstack compiles prompt graphs into transcripts",
		Long:         `Promptstack is a CLI tool for assembling directed graphs of prompt steps and compiling them into deterministic prompt transcripts and canonical JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ~/.config/promptstack/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by the --config flag.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the state backend selected by the config.
func (c *CLI) newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Store.Path)
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return nil, errUnknownBackend(cfg.Store.Backend)
	}
}

// newGenerator builds the generation client from the config. The API key
// is read from the environment variable the config names.
func (c *CLI) newGenerator(cfg *config.Config, noCache bool) (*genai.Dispatcher, error) {
	gc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	client := genai.NewClient(genai.Config{
		Endpoint:    cfg.Generation.Endpoint,
		Model:       cfg.Generation.Model,
		APIKey:      os.Getenv(cfg.Generation.APIKeyEnv),
		Temperature: cfg.Generation.Temperature,
		Timeout:     cfg.Generation.Timeout.Duration(),
	}, gc, cfg.Cache.TTL.Duration())
	return genai.NewDispatcher(client), nil
}

// errUnknownBackend reports an unsupported store backend name.
func errUnknownBackend(name string) error {
	return errors.New(errors.ErrCodeUnsupported,
		"unknown store backend %q (expected file, memory, redis, or mongo)", name)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/promptstack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
