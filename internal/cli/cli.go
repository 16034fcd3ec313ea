package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partsengine/internal/config"
	"github.com/matzehuels/partsengine/pkg/cache"
	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/integrations/jlcsearch"
)

// appName is the application name used for directories and display.
const appName = "partsengine"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs and already carries the
	// global flag overrides.
	Config config.Config

	configPath   string
	verbose      bool
	noCache      bool
	cacheBackend string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. Caller reporting follows debug.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// loadConfig reads the config file and applies the global flags on top.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.cacheBackend != "" {
		cfg.Cache.Backend = c.cacheBackend
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine builds an engine over the configured catalog and cache. The
// returned close function releases the cache backend.
func (c *CLI) newEngine(ctx context.Context) (*engine.Engine, func() error, error) {
	backend, err := newCache(ctx, c.Config.Cache)
	if err != nil {
		return nil, nil, err
	}

	ttl := c.Config.Cache.TTL.Duration
	if ttl == 0 && persistent(c.Config.Cache.Backend) {
		ttl = cache.TTLCatalogPersistent
	}

	opts := jlcsearch.Options{
		BaseURL:  c.Config.Catalog.BaseURL,
		TTL:      ttl,
		Timeout:  c.Config.Catalog.Timeout.Duration,
		Attempts: c.Config.Catalog.Attempts,
	}
	if prefix := c.Config.Cache.Prefix; prefix != "" {
		opts.Keyer = cache.NewScopedKeyer(nil, prefix)
	}
	client := jlcsearch.NewClient(backend, opts)
	c.Logger.Debug("engine ready",
		"catalog", client.BaseURL(),
		"cache", c.Config.Cache.Backend,
		"ttl", ttl)

	return engine.New(client, c.Logger), backend.Close, nil
}

// newCache opens the cache backend named in cfg.
func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory, "":
		return cache.NewMemoryCache(), nil
	case config.BackendLRU:
		return cache.NewLRUCache(cfg.Size, cfg.TTL.Duration), nil
	case config.BackendFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return mc, nil
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
}

// persistent reports whether backend outlives the process.
func persistent(backend string) bool {
	switch backend {
	case config.BackendFile, config.BackendRedis, config.BackendMongo:
		return true
	}
	return false
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the XDG
// default (~/.cache/partsengine/).
func cacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return config.DefaultCacheDir()
}

// readInput returns the contents named by arg: "-" or "@-" reads stdin,
// "@path" reads a file, anything else is taken literally.
func readInput(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-" || arg == "@-":
		return io.ReadAll(stdin)
	case len(arg) > 1 && arg[0] == '@':
		path := arg[1:]
		if err := pkgerrors.ValidatePath(path); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
	return []byte(arg), nil
}
