// Package server implements the topoviz REST API.
//
// Routes:
//
//	GET    /healthz                        liveness
//	GET    /version                        build information
//	GET    /metrics                        Prometheus metrics
//	GET    /styles                         renderer stylesheet
//	GET    /collections                    available collections
//	GET    /graphs/{collection}/layout     layout (?variant=&format=&labels=)
//	POST   /sessions                       create a selection session
//	GET    /sessions/{id}                  session state and marks
//	DELETE /sessions/{id}                  end a session
//	POST   /sessions/{id}/tap              tap a vertex ("" resets)
//	POST   /sessions/{id}/mode             switch selection mode
//	POST   /sessions/{id}/constraint       run a path query for the selection
//	POST   /sessions/{id}/compute          run the workload batch
//	GET    /sessions/{id}/layout           layout with the session marks applied
//	GET    /sessions/{id}/runs             stored workload runs
//	GET    /sessions/{id}/runs/{run}       one workload run
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/pipeline"
	"github.com/matzehuels/topoviz/pkg/session"
)

// Options configures the sessions a server creates.
type Options struct {
	// Concurrency bounds workload pair queries per session.
	Concurrency int

	// Direction is sent with every path query.
	Direction pathquery.Direction

	// ExcludedCountries is sent with sovereignty queries.
	ExcludedCountries []string

	// RunHistory bounds the workload runs kept per session.
	RunHistory int

	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer
}

// Server serves the REST API.
type Server struct {
	runner   *pipeline.Runner
	querier  pathquery.Querier
	sessions *session.Registry
	logger   *log.Logger
	opts     Options
	router   chi.Router
}

// New creates a server. A nil registry gets one with [session.DefaultTTL].
func New(runner *pipeline.Runner, querier pathquery.Querier, sessions *session.Registry, logger *log.Logger, opts Options) *Server {
	if sessions == nil {
		sessions = session.NewRegistry(session.DefaultTTL)
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if querier != nil {
		querier = pathquery.Observe(querier)
	}
	s := &Server{
		runner:   runner,
		querier:  querier,
		sessions: sessions,
		logger:   logger,
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session registry.
func (s *Server) Sessions() *session.Registry { return s.sessions }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/styles", s.handleStyles)
	r.Get("/collections", s.handleCollections)
	r.Get("/graphs/{collection}/layout", s.handleLayout)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/tap", s.handleTap)
			r.Post("/mode", s.handleMode)
			r.Post("/constraint", s.handleConstraint)
			r.Post("/compute", s.handleCompute)
			r.Get("/layout", s.handleSessionLayout)
			r.Get("/runs", s.handleRuns)
			r.Get("/runs/{run}", s.handleRun)
		})
	})
	return r
}

// logRequests logs one line per request at debug level, errors at warn.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", kv...)
			return
		}
		s.logger.Debug("request", kv...)
	})
}

// ServeConfig configures [Server.ListenAndServe].
type ServeConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	CleanupInterval time.Duration
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
// Expired sessions are swept every CleanupInterval while serving.
func (s *Server) ListenAndServe(ctx context.Context, cfg ServeConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.CleanupInterval > 0 {
		go s.sessions.Run(ctx, cfg.CleanupInterval)
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
