package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnFetchStart(ctx, "file", "fabric")
	p.OnFetchComplete(ctx, "file", "fabric", 10, time.Second, nil)
	p.OnLayoutStart(ctx, "ring", 100)
	p.OnLayoutComplete(ctx, "ring", time.Second, true, nil)
	p.OnRenderStart(ctx, "svg")
	p.OnRenderComplete(ctx, "svg", time.Second, nil)

	q := NoopQueryHooks{}
	q.OnQueryStart(ctx, "load")
	q.OnQueryComplete(ctx, "load", time.Second, false, nil)
	q.OnWorkloadBatch(ctx, 3, 1, time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost", "/collections")
	h.OnResponse(ctx, "GET", "localhost", "/collections", 200, time.Second)
	h.OnError(ctx, "GET", "localhost", "/collections", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Query() should return NoopQueryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	prom := NewPrometheus(prometheus.NewRegistry())
	SetPipelineHooks(prom)
	SetQueryHooks(prom)
	SetCacheHooks(prom)
	SetHTTPHooks(prom)
	if Pipeline() != PipelineHooks(prom) || Query() != QueryHooks(prom) ||
		Cache() != CacheHooks(prom) || HTTP() != HTTPHooks(prom) {
		t.Error("Set*Hooks should install the given hooks")
	}

	SetQueryHooks(nil)
	if Query() != QueryHooks(prom) {
		t.Error("SetQueryHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Reset() should restore NoopQueryHooks")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnLayoutComplete(ctx, "ring", time.Millisecond, false, nil)
	p.OnLayoutComplete(ctx, "ring", time.Millisecond, true, nil)
	p.OnLayoutComplete(ctx, "clos", time.Millisecond, false, errors.New("boom"))
	p.OnQueryComplete(ctx, "load", time.Millisecond, true, nil)
	p.OnQueryComplete(ctx, "load", time.Millisecond, false, nil)
	p.OnWorkloadBatch(ctx, 3, 1, time.Millisecond)
	p.OnCacheSet(ctx, "layout", 512)

	if got := testutil.ToFloat64(p.layoutTotal.WithLabelValues("ring", "fallback")); got != 1 {
		t.Errorf("ring fallback count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.layoutTotal.WithLabelValues("clos", "error")); got != 1 {
		t.Errorf("clos error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.queriesTotal.WithLabelValues("load", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.workloadPairs); got != 3 {
		t.Errorf("workload pairs = %v, want 3", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes.WithLabelValues("layout")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}

	expected := `
# HELP topoviz_workload_pair_failures_total Pairwise workload queries that failed or found no path
# TYPE topoviz_workload_pair_failures_total counter
topoviz_workload_pair_failures_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "topoviz_workload_pair_failures_total"); err != nil {
		t.Error(err)
	}
}
