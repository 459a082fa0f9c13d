package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/topoviz/pkg/layout"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// GenerateLayout runs one layout pass and fires the layout hooks. A nil
// visible slice lays out every vertex.
func GenerateLayout(ctx context.Context, e *layout.Engine, m *topology.Model, v layout.Variant, visible []string) (*layout.Result, error) {
	hooks := observability.Pipeline()
	n := len(visible)
	if visible == nil && m != nil {
		n = m.Len()
	}
	hooks.OnLayoutStart(ctx, string(v), n)
	start := time.Now()

	res, err := e.Run(v, m, visible)

	hooks.OnLayoutComplete(ctx, string(v), time.Since(start), res != nil && res.Fallback, err)
	return res, err
}
