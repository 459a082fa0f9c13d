// Package config loads the topoviz configuration.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/topoviz/config.toml
//  3. TOPOVIZ_* environment variables, e.g. TOPOVIZ_API_BASE_URL or
//     TOPOVIZ_CACHE_BACKEND
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[api]
//	base_url = "http://graphs.lab:8000/api/v1"
//	direction = "outbound"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[source]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "topology"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
//
//	[layout.clos]
//	spacing = 140.0
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	topoerrors "github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/source"
)

const (
	appName = "topoviz"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TOPOVIZ"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	API    APIConfig     `toml:"api"`
	Cache  CacheConfig   `toml:"cache"`
	Source SourceConfig  `toml:"source"`
	Server ServerConfig  `toml:"server"`
	Layout layout.Config `toml:"layout" ignored:"true"`
}

// APIConfig configures the graph service used for path queries and, with
// the http source, topology fetches.
type APIConfig struct {
	BaseURL           string        `toml:"base_url" split_words:"true"`
	Timeout           time.Duration `toml:"timeout"`
	Direction         string        `toml:"direction"`
	ExcludedCountries []string      `toml:"excluded_countries" split_words:"true"`
	Concurrency       int           `toml:"concurrency"`
}

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr" split_words:"true"`
	RedisPassword string        `toml:"redis_password" split_words:"true"`
	RedisDB       int           `toml:"redis_db" split_words:"true"`
	Prefix        string        `toml:"prefix"`
}

// SourceConfig selects where topologies are read from.
type SourceConfig struct {
	Kind          string `toml:"kind"`
	Dir           string `toml:"dir"`
	URL           string `toml:"url"`
	MongoURI      string `toml:"mongo_uri" split_words:"true"`
	MongoDatabase string `toml:"mongo_database" split_words:"true"`
}

// ServerConfig configures the REST API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	SessionTTL      time.Duration `toml:"session_ttl" split_words:"true"`
	CleanupInterval time.Duration `toml:"cleanup_interval" split_words:"true"`
	RunHistory      int           `toml:"run_history" split_words:"true"`
	ReadTimeout     time.Duration `toml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `toml:"write_timeout" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000/api/v1",
			Timeout:     10 * time.Second,
			Direction:   string(pathquery.Outbound),
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     24 * time.Hour,
			Prefix:  appName + ":",
		},
		Source: SourceConfig{
			Kind:          string(source.KindFile),
			Dir:           ".",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      30 * time.Minute,
			CleanupInterval: time.Minute,
			RunHistory:      50,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
		},
		Layout: layout.DefaultConfig(),
	}
}

// DefaultPath returns the default config file location.
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

// Load reads the config file at path over the defaults, then applies
// environment overrides. An empty path means [DefaultPath], which may be
// absent; an explicit path must exist. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, fmt.Errorf("config path: %w", err)
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg = Default()
	case err != nil:
		return Config{}, topoerrors.Wrap(topoerrors.ErrCodeInvalidInput, err, "read config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, topoerrors.New(topoerrors.ErrCodeInvalidInput,
				"unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, topoerrors.Wrap(topoerrors.ErrCodeInvalidInput, err, "environment overrides")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and the layout constants.
func (c Config) Validate() error {
	if _, err := source.ParseKind(c.Source.Kind); err != nil {
		return err
	}
	if !slices.Contains([]string{CacheNone, CacheFile, CacheRedis}, c.Cache.Backend) {
		return topoerrors.New(topoerrors.ErrCodeInvalidInput,
			"unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if _, err := pathquery.ParseDirection(c.API.Direction); err != nil {
		return err
	}
	if c.API.Concurrency < 1 {
		return topoerrors.New(topoerrors.ErrCodeInvalidInput, "api concurrency must be at least 1")
	}
	return c.Layout.Validate()
}

// SourceURL returns the base URL of the http source, defaulting to the API
// base URL.
func (c Config) SourceURL() string {
	if c.Source.URL != "" {
		return c.Source.URL
	}
	return c.API.BaseURL
}

// CacheDir returns the file cache directory using the XDG standard
// (~/.cache/topoviz/) unless one is configured.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
