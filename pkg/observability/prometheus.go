package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	layoutTotal     *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	renderTotal     *prometheus.CounterVec
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	workloadPairs   prometheus.Counter
	workloadFailed  prometheus.Counter
	workloadBatches prometheus.Histogram
	cacheTotal      *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpTotal       *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var durationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0}

// NewPrometheus registers the topoviz collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_topology_fetch_total",
				Help: "Topology fetches by source and outcome",
			},
			[]string{"source", "status"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topoviz_topology_fetch_duration_seconds",
				Help:    "Topology fetch duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"source"},
		),
		layoutTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_layout_total",
				Help: "Layout passes by variant and outcome (ok, fallback, error)",
			},
			[]string{"variant", "outcome"},
		),
		layoutDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topoviz_layout_duration_seconds",
				Help:    "Layout pass duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"variant"},
		),
		renderTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_render_total",
				Help: "Renders by format and status",
			},
			[]string{"format", "status"},
		),
		queriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_path_queries_total",
				Help: "Path queries by constraint and outcome (found, not_found, error)",
			},
			[]string{"constraint", "outcome"},
		),
		queryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topoviz_path_query_duration_seconds",
				Help:    "Path query duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"constraint"},
		),
		workloadPairs: f.NewCounter(prometheus.CounterOpts{
			Name: "topoviz_workload_pairs_total",
			Help: "Pairwise workload queries issued",
		}),
		workloadFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "topoviz_workload_pair_failures_total",
			Help: "Pairwise workload queries that failed or found no path",
		}),
		workloadBatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "topoviz_workload_batch_duration_seconds",
			Help:    "Workload batch duration in seconds",
			Buckets: durationBuckets,
		}),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_cache_operations_total",
				Help: "Cache operations by key type and result (hit, miss, set)",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),
		httpTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topoviz_http_client_requests_total",
				Help: "Outgoing HTTP requests by host and status code",
			},
			[]string{"host", "code"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topoviz_http_client_duration_seconds",
				Help:    "Outgoing HTTP request duration in seconds",
				Buckets: durationBuckets,
			},
			[]string{"host"},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnFetchStart(context.Context, string, string) {}

func (p *Prometheus) OnFetchComplete(_ context.Context, source, _ string, _ int, d time.Duration, err error) {
	p.fetchTotal.WithLabelValues(source, status(err)).Inc()
	p.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (p *Prometheus) OnLayoutStart(context.Context, string, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, variant string, d time.Duration, fallback bool, err error) {
	outcome := status(err)
	if err == nil && fallback {
		outcome = "fallback"
	}
	p.layoutTotal.WithLabelValues(variant, outcome).Inc()
	p.layoutDuration.WithLabelValues(variant).Observe(d.Seconds())
}

func (p *Prometheus) OnRenderStart(context.Context, string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, format string, _ time.Duration, err error) {
	p.renderTotal.WithLabelValues(format, status(err)).Inc()
}

func (p *Prometheus) OnQueryStart(context.Context, string) {}

func (p *Prometheus) OnQueryComplete(_ context.Context, constraint string, d time.Duration, found bool, err error) {
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "not_found"
	}
	p.queriesTotal.WithLabelValues(constraint, outcome).Inc()
	p.queryDuration.WithLabelValues(constraint).Observe(d.Seconds())
}

func (p *Prometheus) OnWorkloadBatch(_ context.Context, pairs, failures int, d time.Duration) {
	p.workloadPairs.Add(float64(pairs))
	p.workloadFailed.Add(float64(failures))
	p.workloadBatches.Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	p.httpTotal.WithLabelValues(host, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, host, _ string, _ error) {
	p.httpTotal.WithLabelValues(host, "error").Inc()
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ QueryHooks    = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
