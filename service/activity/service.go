// Package activity defines the gateway to side-effecting fulfillment
// operations.  The engine depends on the contract only - real deployments
// bridge it to warehouse systems; the local sub-package provides an
// in-process reference implementation.
package activity

import (
	"context"
	"errors"

	"github.com/viant/fulfillment/model"
)

// Service exposes the four operations the engine needs.  Each call is issued
// through the invoker with a bounded start-to-close timeout and transparent
// retry; from the caller's perspective every operation is a single logical,
// eventually-resolving step.
type Service interface {
	// AllocateToStores partitions the order into per-store sub-orders.  The
	// result must be deterministic for a given order as the coordinator may
	// replay the call.
	AllocateToStores(ctx context.Context, order *model.Order) ([]*model.SubOrder, error)

	// PickItems picks all items of the sub-order and returns a human-readable
	// picking report.
	PickItems(ctx context.Context, subOrder *model.SubOrder, processID string) (string, error)

	// Dispatch hands the picked sub-order to a carrier.
	Dispatch(ctx context.Context) error

	// ConfirmDelivered acknowledges delivery of a dispatched sub-order.
	ConfirmDelivered(ctx context.Context) error
}

// TerminalError marks a failure that must not be retried; the caller converts
// it into a compensation trigger.
type TerminalError struct {
	cause error
}

// NewTerminalError wraps a cause as non-retryable.
func NewTerminalError(cause error) *TerminalError {
	return &TerminalError{cause: cause}
}

func (e *TerminalError) Error() string {
	if e.cause == nil {
		return "terminal activity failure"
	}
	return e.cause.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.cause
}

// IsTerminal reports whether err carries a TerminalError.
func IsTerminal(err error) bool {
	var terminal *TerminalError
	return errors.As(err, &terminal)
}
