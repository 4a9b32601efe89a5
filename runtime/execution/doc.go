// Package execution holds the plumbing shared by the order coordinator and
// the sub-order processes: the one-way cancellation latch, the compensation
// log, signal definitions, queryable process snapshots and completion results.
//
// Every logical process is single-threaded: within one process only one step
// runs at a time and every blocking operation is an explicit suspension point.
// Processes never share mutable memory - they interact through spawn/result,
// signals and read-only snapshot queries only.
package execution
