// Package source fetches raw topology payloads.
//
// A [Source] lists the collections it knows and returns the payload of one
// collection as a [graph.Topology]. Three implementations are provided:
//
//   - [FileSource] reads <collection>.json files from a directory
//   - [HTTPSource] reads from the graph service over HTTP, through a cached
//     [integrations.Client]
//   - [MongoSource] reads the <collection>_vertices and <collection>_edges
//     collections of a MongoDB database
//
// Collection names are validated with [errors.ValidateCollectionName] before
// any I/O. An unknown collection is a COLLECTION_NOT_FOUND error.
//
// [graph.Topology]: github.com/matzehuels/topoviz/pkg/graph.Topology
// [integrations.Client]: github.com/matzehuels/topoviz/pkg/integrations.Client
// [errors.ValidateCollectionName]: github.com/matzehuels/topoviz/pkg/errors.ValidateCollectionName
package source
