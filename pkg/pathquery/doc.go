// Package pathquery issues constraint-parameterized path queries against the
// external graph service and decodes its answers.
//
// # Constraints
//
// Five routing constraints are supported: [Shortest], [Latency],
// [Utilization], [Load] and [Sovereignty]. Sovereignty queries carry a list of
// excluded country codes; the others ignore it.
//
// # Results
//
// A query that completes but finds no path is not an error: it returns a
// [Result] with Found set to false. Transport failures, non-2xx answers and
// undecodable bodies are PATH_QUERY_FAILED errors. Invalid requests are
// rejected before anything is sent.
//
// # Usage
//
//	q := pathquery.NewHTTPQuerier("http://graph:8000/api", client)
//	res, err := q.Query(ctx, pathquery.Request{
//	    Collection:  "fabric",
//	    Source:      "igp_node/r1",
//	    Destination: "igp_node/r4",
//	    Constraint:  pathquery.Load,
//	})
//
// [Observe] wraps any [Querier] so every call reports to the observability
// query hooks.
package pathquery
