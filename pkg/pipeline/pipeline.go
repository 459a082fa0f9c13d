// Package pipeline runs the fetch → build → layout → render pipeline.
//
// This package is the one place that chains a topology [source.Source], the
// [topology] model, the [layout] engine and the renderers. The CLI and the
// HTTP server both go through a [Runner], so caching, logging and hooks
// behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: read the raw payload of a collection from a source
//  2. Build: normalize the payload into an immutable model
//  3. Layout: place the visible vertices with the chosen variant
//  4. Render: export the serialized layout and convert it (JSON, DOT, SVG, PDF, PNG)
//
// Fetch, layout and render results are cached under content-derived keys.
// A model is always rebuilt from the payload since building is cheap and
// the model is not serializable.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, cache, nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Collection: "fabric",
//	    Variant:    "clos",
//	    Formats:    []string{"json", "svg"},
//	})
//	svg := res.Artifacts["svg"]
//
// Run the layout stage only:
//
//	res, err := runner.Layout(ctx, "fabric", pipeline.Options{Variant: "ring"})
package pipeline

import (
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoviz/pkg/cache"
	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/render"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultVariant is the layout used when none is requested.
	DefaultVariant = layout.VariantRing

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// DefaultFormats are rendered when none are requested.
var DefaultFormats = []string{string(render.FormatJSON)}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	Collection string   `json:"collection"`
	Variant    string   `json:"variant,omitempty"`
	Visible    []string `json:"visible,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Render options
	Formats []string        `json:"formats,omitempty"`
	Labels  bool            `json:"labels,omitempty"`
	Scale   float64         `json:"scale,omitempty"`
	Marks   highlight.Marks `json:"marks,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidateCollectionName(o.Collection); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// ValidateForLayout checks the variant and applies layout defaults.
func (o *Options) ValidateForLayout() error {
	if o.Variant == "" {
		o.Variant = string(DefaultVariant)
	}
	if _, err := layout.ParseVariant(o.Variant); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender checks the formats and applies render defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateFormats checks that all formats are known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts(configHash string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Variant:    o.Variant,
		ConfigHash: configHash,
		Visible:    o.Visible,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
// marksHash identifies the highlight marks baked into the layout.
func (o *Options) RenderKeyOpts(format, marksHash string) cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{Format: format, Marks: marksHash}
	if o.Labels {
		opts.Format += "+labels"
	}
	if format == string(render.FormatPNG) {
		opts.Format += "@" + formatScale(o.Scale)
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the fetched payload.
	Topology graph.Topology

	// TopologyHash is the content hash of the payload.
	TopologyHash string

	// Model is the normalized model the layout was computed on.
	Model *topology.Model

	// Placement is the resolved layout pass.
	Placement *layout.Result

	// Layout is the serialized layout, marks applied.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	EdgeCount   int
	Dropped     int
	FetchTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	FetchHit  bool
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

func formatScale(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
