// Package highlight projects path results onto a topology as class marks.
//
// Marks are plain data: a node or edge id maps to a sorted list of [Class]
// values. Renderers style elements from their classes; they never see path
// results directly.
//
// # Path classes
//
//   - [Selected]: the single free-mode path
//   - [Sequential]: the manually built sequential chain
//   - [WorkloadPath]: every path of a workload computation
//   - [HighLoad], [CriticalLoad]: load severity on workload edges
//
// Workload marks accumulate: each edge keeps the highest severity it has
// ever been given, and at most one severity class. Free-mode and sequential
// marks replace whatever path marks were present before.
//
// # Selection classes
//
// [SourceSelected] and [DestSelected] mark the current free-mode endpoints
// and live independently of path marks.
//
// An [Engine] is not safe for concurrent use; the selection controller
// serializes access to it.
package highlight
