// Package coordinator owns the lifecycle of one order end to end and
// enforces all-or-nothing semantics across its sub-orders (a saga).  It
// allocates the order to stores, spawns one sub-order process per group,
// aggregates their completion futures against a one-way cancellation latch
// and unwinds every still-open sub-order when any of them fails.
package coordinator
