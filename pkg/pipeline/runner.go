package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoviz/pkg/cache"
	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/source"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators. Multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *layout.Engine
	Styles graph.Stylesheet
	Logger *log.Logger
}

// NewRunner creates a runner reading from src.
// If c is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If engine is nil, an engine with [layout.DefaultConfig] is used.
func NewRunner(src source.Source, c cache.Cache, keyer cache.Keyer, engine *layout.Engine, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if engine == nil {
		engine = layout.NewEngine(layout.DefaultConfig())
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Engine: engine,
		Styles: graph.DefaultStylesheet(),
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Layout(ctx, opts.Collection, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout fetches a collection, builds the model and lays it out. The
// returned result carries no artifacts.
func (r *Runner) Layout(ctx context.Context, collection string, opts Options) (*Result, error) {
	opts.Collection = collection
	if err := errors.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	topo, hit, err := r.FetchWithCacheInfo(ctx, collection, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Topology = topo
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.FetchHit = hit
	result.TopologyHash, _ = cache.HashJSON(topo)

	// Stage 2: Build
	m, err := topo.Model()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Model = m
	result.Stats.VertexCount = m.Len()
	result.Stats.EdgeCount = len(m.Edges())
	result.Stats.Dropped = len(m.Dropped())

	r.Logger.Info("loaded topology",
		"collection", collection,
		"vertices", result.Stats.VertexCount,
		"edges", result.Stats.EdgeCount,
		"dropped", result.Stats.Dropped,
		"cached", hit,
		"duration", result.Stats.FetchTime)
	for _, d := range m.Dropped() {
		r.Logger.Debug("dropped edge", "id", d.ID, "reason", d.Reason)
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	placement, hit, err := r.GenerateLayoutWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Placement = placement
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	if placement.Fallback {
		r.Logger.Warn("layout fell back to breadth-first",
			"variant", placement.Variant,
			"unresolved", len(placement.Unresolved),
			"reason", placement.Reason)
	}
	r.Logger.Info("computed layout",
		"variant", placement.Variant,
		"positioned", len(placement.Positions),
		"hidden", len(placement.Hidden),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	result.Layout = graph.Export(collection, m, placement, opts.Marks)
	result.Layout.Styles = r.Styles
	return result, nil
}

// Model fetches a collection through the cache and builds its model.
func (r *Runner) Model(ctx context.Context, collection string, refresh bool) (*topology.Model, error) {
	if err := errors.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	topo, _, err := r.FetchWithCacheInfo(ctx, collection, refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	m, err := topo.Model()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return m, nil
}

// FetchWithCacheInfo reads a collection through the cache.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, collection string, refresh bool) (graph.Topology, bool, error) {
	if r.Source == nil {
		return graph.Topology{}, false, errors.New(errors.ErrCodeInvalidInput, "no topology source configured")
	}
	key := r.Keyer.TopologyKey(r.Source.Name(), collection)
	hooks := observability.Cache()

	if !refresh {
		var cached graph.Topology
		if ok, _ := cache.GetJSON(ctx, r.Cache, key, &cached); ok {
			hooks.OnCacheHit(ctx, "topology")
			return cached, true, nil
		}
		hooks.OnCacheMiss(ctx, "topology")
	}

	topo, err := Fetch(ctx, r.Source, collection)
	if err != nil {
		return graph.Topology{}, false, err
	}
	r.store(ctx, "topology", key, topo, cache.TTLTopology)
	return topo, false, nil
}

// GenerateLayoutWithCacheInfo lays out res.Model, keyed on the topology
// hash, the variant, the engine config and the visible set.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, res *Result, opts Options) (*layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	variant := layout.Variant(opts.Variant)
	configHash, _ := cache.HashJSON(r.Engine.Config())
	key := r.Keyer.LayoutKey(res.TopologyHash, opts.LayoutKeyOpts(configHash))
	hooks := observability.Cache()

	if !opts.Refresh && res.TopologyHash != "" {
		var cached layout.Result
		if ok, _ := cache.GetJSON(ctx, r.Cache, key, &cached); ok {
			hooks.OnCacheHit(ctx, "layout")
			return &cached, true, nil
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	placement, err := GenerateLayout(ctx, r.Engine, res.Model, variant, opts.Visible)
	if err != nil {
		return nil, false, err
	}
	if res.TopologyHash != "" {
		r.store(ctx, "layout", key, placement, cache.TTLLayout)
	}
	return placement, false, nil
}

// RenderWithCacheInfo renders l, reusing cached artifacts when every
// requested format is cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}
	marksHash, _ := cache.HashJSON(opts.Marks)
	hooks := observability.Cache()

	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(f, marksHash))
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, f := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keys[f])
			if err != nil || !hit {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, "render")
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, "render")
	}

	rendered, err := RenderFromLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for f, data := range rendered {
		if r.Cache.Set(ctx, keys[f], data, cache.TTLRender) == nil {
			hooks.OnCacheSet(ctx, "render", len(data))
		}
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Collections lists the collections of the runner's source.
func (r *Runner) Collections(ctx context.Context) ([]string, error) {
	if r.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no topology source configured")
	}
	return r.Source.Collections(ctx)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Debug("skip caching", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
