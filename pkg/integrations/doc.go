// Package integrations provides the shared HTTP client used to talk to the
// external graph service.
//
// # Overview
//
// The graph service owns the topology collections and computes paths; topoviz
// only reads from it. Two packages build on [Client]:
//
//   - [source]: HTTPSource fetches collection lists and topology payloads
//   - [pathquery]: HTTPQuerier issues constraint-parameterized path queries
//
// # Client Pattern
//
//	client := integrations.NewClient(c, "graph", time.Hour, nil)
//	var payload Topology
//	err := client.Cached(ctx, collection, false, &payload, func() error {
//	    return client.Get(ctx, integrations.JoinURL(base, "graphs", collection, "topology"), &payload)
//	})
//
// Responses map onto three sentinels: [ErrNotFound] for 404, [ErrRequest]
// for other 4xx, and [ErrNetwork] for transport failures and 5xx. Callers
// wrap them in their own structured codes. Nothing is retried.
//
// [source]: github.com/matzehuels/topoviz/pkg/source
// [pathquery]: github.com/matzehuels/topoviz/pkg/pathquery
package integrations
