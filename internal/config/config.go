// Package config loads partsengine settings from a TOML file and the
// environment.
//
// Precedence, lowest to highest: built-in defaults, the config file,
// PARTSENGINE_* environment variables, command-line flags (applied by the
// CLI after Load returns).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/integrations"
	"github.com/matzehuels/partsengine/pkg/integrations/jlcsearch"
)

const appName = "partsengine"

// Cache backends.
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Environment variables read by Load.
const (
	EnvCatalogURL   = "PARTSENGINE_CATALOG_URL"
	EnvCacheBackend = "PARTSENGINE_CACHE_BACKEND"
	EnvRedisURL     = "PARTSENGINE_REDIS_URL"
	EnvMongoURI     = "PARTSENGINE_MONGO_URI"
	EnvServerAddr   = "PARTSENGINE_ADDR"
	EnvConcurrency  = "PARTSENGINE_CONCURRENCY"
)

// Config is the complete partsengine configuration.
type Config struct {
	Catalog Catalog `toml:"catalog"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
	Batch   Batch   `toml:"batch"`
}

// Catalog configures the remote parts catalog.
type Catalog struct {
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

// Cache configures where catalog responses are stored.
type Cache struct {
	Backend         string   `toml:"backend"`
	Size            int      `toml:"size"`
	TTL             Duration `toml:"ttl"`
	Dir             string   `toml:"dir"`
	RedisURL        string   `toml:"redis_url"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`

	// Prefix scopes every key, so deployments can share a redis or mongo
	// backend without seeing each other's entries.
	Prefix string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Batch configures batch resolution.
type Batch struct {
	Concurrency int `toml:"concurrency"`
}

// Duration is a time.Duration written as a string ("10s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog: Catalog{
			BaseURL:  jlcsearch.DefaultBaseURL,
			Timeout:  Duration{integrations.DefaultTimeout},
			Attempts: 1,
		},
		Cache: Cache{
			Backend:         BackendMemory,
			Size:            10000,
			MongoDatabase:   appName,
			MongoCollection: "catalog_cache",
		},
		Server: Server{Addr: ":8080"},
		Batch:  Batch{Concurrency: 4},
	}
}

// DefaultPath returns the default config file location:
// $XDG_CONFIG_HOME/partsengine/config.toml, or ~/.config/partsengine/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the file cache directory:
// $XDG_CACHE_HOME/partsengine, or ~/.cache/partsengine.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration. An empty path reads the default location,
// where a missing file is not an error; an explicit path must exist.
// Environment overrides are applied and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvCatalogURL:   &c.Catalog.BaseURL,
		EnvCacheBackend: &c.Cache.Backend,
		EnvRedisURL:     &c.Cache.RedisURL,
		EnvMongoURI:     &c.Cache.MongoURI,
		EnvServerAddr:   &c.Server.Addr,
	}
	for env, dst := range str {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "%s: not an integer: %q", EnvConcurrency, v)
		}
		c.Batch.Concurrency = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := pkgerrors.ValidateURL(c.Catalog.BaseURL); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "catalog.base_url")
	}
	if c.Catalog.Timeout.Duration < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "catalog.timeout must not be negative")
	}
	if c.Catalog.Attempts < 1 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "catalog.attempts must be at least 1")
	}
	if c.Cache.TTL.Duration < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Batch.Concurrency < 1 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "batch.concurrency must be at least 1")
	}

	switch c.Cache.Backend {
	case BackendMemory, BackendFile, BackendNone:
	case BackendLRU:
		if c.Cache.Size < 1 {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache.size must be at least 1 for the lru backend")
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
