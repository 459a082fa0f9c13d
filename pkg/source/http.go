package source

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/integrations"
)

// HTTPSource reads topologies from the graph service.
//
//	GET {base}/collections
//	GET {base}/graphs/{collection}/topology
type HTTPSource struct {
	base    string
	client  *integrations.Client
	refresh bool
}

// NewHTTPSource creates a source for the service at base. A nil client gets
// an uncached default. With refresh set, cached responses are ignored and
// overwritten.
func NewHTTPSource(base string, client *integrations.Client, refresh bool) (*HTTPSource, error) {
	if err := errors.ValidateURL(base); err != nil {
		return nil, err
	}
	if client == nil {
		client = integrations.NewClient(nil, "graphs", 0, nil)
	}
	return &HTTPSource{base: base, client: client, refresh: refresh}, nil
}

// Name implements [Source].
func (s *HTTPSource) Name() string { return "http:" + s.base }

type collectionsResponse struct {
	Collections []string `json:"collections"`
}

// Collections implements [Source].
func (s *HTTPSource) Collections(ctx context.Context) ([]string, error) {
	var resp collectionsResponse
	u := integrations.JoinURL(s.base, "collections")
	err := s.client.Cached(ctx, u, s.refresh, &resp, func() error {
		return s.client.Get(ctx, u, &resp)
	})
	if err != nil {
		return nil, mapHTTPError(err, "list collections")
	}
	out := slices.Clone(resp.Collections)
	slices.Sort(out)
	return out, nil
}

// Topology implements [Source].
func (s *HTTPSource) Topology(ctx context.Context, collection string) (graph.Topology, error) {
	if err := checkName(collection); err != nil {
		return graph.Topology{}, err
	}
	var t graph.Topology
	u := integrations.JoinURL(s.base, "graphs", collection, "topology")
	err := s.client.Cached(ctx, u, s.refresh, &t, func() error {
		return s.client.Get(ctx, u, &t)
	})
	if stderrors.Is(err, integrations.ErrNotFound) {
		return graph.Topology{}, notFound(collection)
	}
	if err != nil {
		return graph.Topology{}, mapHTTPError(err, "fetch topology %s", collection)
	}
	return t, nil
}

func mapHTTPError(err error, format string, args ...any) error {
	if stderrors.Is(err, integrations.ErrNetwork) || stderrors.Is(err, integrations.ErrRequest) {
		return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeDataShape, err, format, args...)
}

var _ Source = (*HTTPSource)(nil)
