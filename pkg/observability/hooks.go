// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; main decides what backs them. The
// defaults are no-ops, so the core packages carry no dependency on any
// metrics backend. [NewPrometheus] provides a Prometheus implementation of
// every hook interface.
//
// # Usage
//
// Register hooks at application startup:
//
//	prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	observability.SetPipelineHooks(prom)
//	observability.SetQueryHooks(prom)
//	observability.SetCacheHooks(prom)
//	observability.SetHTTPHooks(prom)
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, "clos", model.Len())
//	// ... run the layout ...
//	observability.Pipeline().OnLayoutComplete(ctx, "clos", time.Since(start), res.Fallback, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the topology-to-layout pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, source, collection string)
	OnFetchComplete(ctx context.Context, source, collection string, vertexCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, variant string, nodeCount int)
	OnLayoutComplete(ctx context.Context, variant string, duration time.Duration, fallback bool, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Query Hooks
// =============================================================================

// QueryHooks receives events from path queries.
type QueryHooks interface {
	// OnQueryStart records an outgoing path query.
	OnQueryStart(ctx context.Context, constraint string)

	// OnQueryComplete records a finished path query. found is false both
	// for "no path" answers and for failures; err tells them apart.
	OnQueryComplete(ctx context.Context, constraint string, duration time.Duration, found bool, err error)

	// OnWorkloadBatch records a finished pairwise workload computation.
	OnWorkloadBatch(ctx context.Context, pairs, failures int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP client calls.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, bool, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)       {}

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnQueryStart(context.Context, string)                                {}
func (NoopQueryHooks) OnQueryComplete(context.Context, string, time.Duration, bool, error) {}
func (NoopQueryHooks) OnWorkloadBatch(context.Context, int, int, time.Duration)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	queryHooks    QueryHooks    = NoopQueryHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetQueryHooks registers custom query hooks. Nil is ignored.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	queryHooks = NoopQueryHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
