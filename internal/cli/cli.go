// Package cli implements the topoviz command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/internal/config"
	"github.com/matzehuels/topoviz/pkg/buildinfo"
	"github.com/matzehuels/topoviz/pkg/cache"
	"github.com/matzehuels/topoviz/pkg/integrations"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/pipeline"
	"github.com/matzehuels/topoviz/pkg/selection"
	"github.com/matzehuels/topoviz/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "topoviz"

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

	configPath string
	loadOnce   sync.Once
	cfg        config.Config
	cfgErr     error
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "topoviz lays out and explores network topologies",
		Long: `topoviz lays out network topology collections (routers, BGP peers, prefixes,
workloads) as rings, Clos fabrics, circles or PolarFly graphs, and highlights
paths computed by the graph service under latency, load, utilization or
data-sovereignty constraints.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/topoviz/config.toml)")

	root.AddCommand(c.collectionsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.workloadCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	c.loadOnce.Do(func() {
		c.cfg, c.cfgErr = config.Load(c.configPath)
	})
	return c.cfg, c.cfgErr
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration. The returned
// cleanup closes the cache and the source.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize cache: %w", err)
	}
	keyer := newKeyer(cfg)
	src, closeSource, err := newSource(ctx, cfg, store, keyer)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("initialize source: %w", err)
	}

	runner := pipeline.NewRunner(src, store, keyer, layout.NewEngine(cfg.Layout), c.Logger)
	cleanup := func() {
		closeSource()
		if err := runner.Close(); err != nil {
			c.Logger.Debug("close cache", "err", err)
		}
	}
	return runner, cleanup, nil
}

// newKeyer scopes every cache key with the configured prefix so several
// deployments can share one cache.
func newKeyer(cfg config.Config) cache.Keyer {
	if cfg.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	case config.CacheFile:
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

func newSource(ctx context.Context, cfg config.Config, store cache.Cache, keyer cache.Keyer) (source.Source, func(), error) {
	kind, err := source.ParseKind(cfg.Source.Kind)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case source.KindHTTP:
		client := integrations.NewClient(store, "topology", cache.TTLTopology, nil).WithKeyer(keyer)
		src, err := source.NewHTTPSource(cfg.SourceURL(), client, false)
		return src, func() {}, err
	case source.KindMongo:
		src, err := source.NewMongoSource(ctx, cfg.Source.MongoURI, cfg.Source.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = src.Close(closeCtx)
		}, nil
	default:
		src, err := source.NewFileSource(cfg.Source.Dir)
		return src, func() {}, err
	}
}

// newQuerier returns the graph service querier with the configured
// per-query timeout.
func newQuerier(cfg config.Config) pathquery.Querier {
	q := pathquery.NewHTTPQuerier(cfg.API.BaseURL, nil)
	timeout := cfg.API.Timeout
	return pathquery.QuerierFunc(func(ctx context.Context, req pathquery.Request) (*pathquery.Result, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return q.Query(ctx, req)
	})
}

// selectionOptions returns controller options from the configuration.
func selectionOptions(cfg config.Config, collection string, q pathquery.Querier, store selection.WorkloadStore, mode selection.Mode) selection.Options {
	return selection.Options{
		Collection:        collection,
		Querier:           q,
		Store:             store,
		Mode:              mode,
		Concurrency:       cfg.API.Concurrency,
		Direction:         pathquery.Direction(cfg.API.Direction),
		ExcludedCountries: cfg.API.ExcludedCountries,
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
