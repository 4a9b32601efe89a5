// Package suborder runs the per-store fulfillment state machine:
//
//	RECEIVED -> (AWAITING_APPROVAL) -> PICKING -> DISPATCHED -> DELIVERED
//
// Any state before DISPATCHED may divert to ROLLBACK through compensation
// when a rollback request arrives, an approval is denied or an approval wait
// times out.  Each process is a single goroutine; every blocking wait is an
// explicit select over latches, timers and activity calls so that a
// cancellation can only take effect at a suspension point.
package suborder
