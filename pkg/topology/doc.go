// Package topology normalizes raw network topology payloads into an
// immutable, categorized graph snapshot.
//
// A [Model] is built once per collection from a vertex map and an edge list
// (the shape returned by the topology service) and never mutated afterwards.
// Every layout strategy and every selection mode reads from the same
// snapshot, so ordering decisions made here are shared by all of them.
//
// # Categories
//
// Each vertex gets exactly one [Category] at build time from [Classify]:
//
//	igp_node, bgp_node, prefix, workload,
//	polarfly_W, polarfly_V1c, polarfly_V1n, polarfly_V2, unknown
//
// An explicit collection/kind attribute wins. The vertex id is only
// pattern-matched when no such attribute is present.
//
// # Ordering
//
// [Model.ByCategory] returns ids ordered by the first numeric token of the
// label (or id suffix), with token-less vertices after all numbered ones,
// and ties broken by id. [Model.IDs] concatenates the categories in
// [Categories] order. No accessor exposes Go map iteration order.
//
// # Edges
//
// Edges are undirected for lookup purposes. Two edges over the same
// unordered endpoint pair collapse into one, keeping the first-seen id.
// Edges referencing unknown vertices are dropped and reported through
// [Model.Dropped]; they never fail the build.
//
// # Tiers
//
// Fabric tiers come from a fixed 20-level table (see [Tiers]) spanning
// endpoint, access, wan, dci and dc fabric layers, down to the dc-prefix
// and dc-workload leaf tiers.
package topology
