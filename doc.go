// Package fulfillment provides an embeddable order fulfillment saga engine.
//
// An order is split across fulfillment stores and each resulting sub-order is
// driven by its own concurrent state machine through picking, dispatch and
// delivery. High-value sub-orders pause at a human approval gate; any failure
// or denial compensates the completed steps and rolls back the sibling
// sub-orders so the saga never half-completes. The engine comes with
// pluggable service layers such as:
//
//   - runtime/coordinator – parent saga orchestration and rollback fan-out
//   - runtime/suborder    – per-store state machine with the approval gate
//   - service/activity    – retrying gateway to side-effecting operations
//   - service/approval    – optional human-in-the-loop approval inbox
//
// The engine is designed to be embedded in host applications. End-users
// typically interact with it via the high-level Service façade exposed by
// the root package:
//
//	srv := fulfillment.New()
//	rt := srv.Runtime()
//	anOrder, _ := rt.LoadOrder(ctx, "order.json")
//	process, wait, _ := rt.StartOrder(ctx, anOrder)
//	result, _ := wait(ctx, time.Minute)
//
// For more details see the individual sub-packages.
package fulfillment
