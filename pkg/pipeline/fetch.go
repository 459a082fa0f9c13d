package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/source"
)

// Fetch reads one collection from src and fires the fetch hooks.
func Fetch(ctx context.Context, src source.Source, collection string) (graph.Topology, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, src.Name(), collection)
	start := time.Now()

	t, err := src.Topology(ctx, collection)

	hooks.OnFetchComplete(ctx, src.Name(), collection, t.VertexCount(), time.Since(start), err)
	return t, err
}
