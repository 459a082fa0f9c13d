package pathquery

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/integrations"
	"github.com/matzehuels/topoviz/pkg/observability"
)

// Querier answers path queries.
type Querier interface {
	Query(ctx context.Context, req Request) (*Result, error)
}

// QuerierFunc adapts a function to [Querier].
type QuerierFunc func(ctx context.Context, req Request) (*Result, error)

// Query implements [Querier].
func (f QuerierFunc) Query(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// HTTPQuerier queries the graph service over HTTP:
//
//	GET {base}/graphs/{collection}/shortest_path[/{constraint}]?source=&destination=&direction=[&excluded_countries=]
type HTTPQuerier struct {
	base   string
	client *integrations.Client
}

// NewHTTPQuerier returns a querier rooted at base. A nil client gets an
// uncached default.
func NewHTTPQuerier(base string, client *integrations.Client) *HTTPQuerier {
	if client == nil {
		client = integrations.NewClient(nil, "pathquery", 0, nil)
	}
	return &HTTPQuerier{base: base, client: client}
}

// URL returns the request URL for req. req must be normalized.
func (q *HTTPQuerier) URL(req Request) string {
	u := integrations.JoinURL(q.base, "graphs", req.Collection, "shortest_path", req.Constraint.routeSegment())
	v := url.Values{}
	v.Set("source", req.Source)
	v.Set("destination", req.Destination)
	v.Set("direction", string(req.Direction))
	if req.Constraint == Sovereignty && len(req.ExcludedCountries) > 0 {
		v.Set("excluded_countries", strings.Join(req.ExcludedCountries, ","))
	}
	return integrations.WithQuery(u, v)
}

// Query implements [Querier]. Results are never cached and failed requests
// are not retried.
func (q *HTTPQuerier) Query(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := q.client.Get(ctx, q.URL(req), &raw); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			err = errors.Wrap(errors.ErrCodeNotFound, err, "collection %s", req.Collection)
		}
		return nil, errors.Wrap(errors.ErrCodePathQuery, err, "%s path %s -> %s", req.Constraint, req.Source, req.Destination)
	}

	res, err := DecodeResult(raw)
	if err != nil {
		return nil, err
	}
	res.Source, res.Destination, res.Constraint = req.Source, req.Destination, req.Constraint
	return res, nil
}

// Observe wraps q so every call reports to the registered query hooks.
func Observe(q Querier) Querier {
	return QuerierFunc(func(ctx context.Context, req Request) (*Result, error) {
		hooks := observability.Query()
		constraint := string(req.Normalized().Constraint)
		hooks.OnQueryStart(ctx, constraint)
		start := time.Now()
		res, err := q.Query(ctx, req)
		hooks.OnQueryComplete(ctx, constraint, time.Since(start), err == nil && res != nil && res.Found, err)
		return res, err
	})
}
