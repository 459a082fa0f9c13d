package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoviz/internal/server"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/session"
)

// serveCommand starts the REST API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topoviz REST API",
		Long: `Serve layouts, renders and interactive selection sessions over HTTP.

Sessions expire after the configured idle TTL. Prometheus metrics for
fetches, layouts, path queries and cache use are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, cleanup, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(metrics)
	observability.SetQueryHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	logger := loggerFromContext(ctx)
	srv := server.New(runner, newQuerier(cfg), session.NewRegistry(cfg.Server.SessionTTL), logger, server.Options{
		Concurrency:       cfg.API.Concurrency,
		Direction:         pathquery.Direction(cfg.API.Direction),
		ExcludedCountries: cfg.API.ExcludedCountries,
		RunHistory:        cfg.Server.RunHistory,
		Gatherer:          reg,
	})

	logger.Info("starting server",
		"source", runner.Source.Name(),
		"graph_service", cfg.API.BaseURL,
		"cache", cfg.Cache.Backend,
		"session_ttl", cfg.Server.SessionTTL)
	return srv.ListenAndServe(ctx, server.ServeConfig{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		CleanupInterval: cfg.Server.CleanupInterval,
	})
}
