// Package selection turns tap events into path queries and highlight marks.
//
// A [Controller] runs one of three mutually exclusive modes:
//
//   - [ModeFree]: tap a source, tap a destination, then choose a constraint
//     to query the path between them
//   - [ModeSequential]: build a chain by tapping adjacent nodes
//   - [ModeWorkload]: toggle a member set, then compute the load paths of
//     every member pair
//
// Tapping the background (an empty id) clears the current mode's selection.
// Switching modes or collections resets everything, including highlight
// marks and the workload store.
//
// # Staleness
//
// Queries run without holding the controller lock. Every reset bumps a
// generation counter; a result that comes back under an older generation
// is discarded and the caller gets a STALE_RESULT error.
//
// # Workload Store
//
// Finished workload computations are recorded in a [WorkloadStore] passed
// in through [Options]. [MemoryStore] is the default; its id generator is
// injectable for tests.
package selection
