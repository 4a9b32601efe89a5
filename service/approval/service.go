// Package approval manages pending approval requests for sub-orders whose
// value crosses the approval threshold, and records the decisions taken on
// them. Decisions are forwarded to the owning process as approve or deny
// signals through a pluggable signaler.
package approval

import (
	"context"

	"github.com/viant/fulfillment/service/messaging"
)

// Signaler delivers a decision to the process that raised the request.
type Signaler func(ctx context.Context, processID string, signal string, reason string) error

// Service manages approval requests and decisions.
type Service interface {
	// RequestApproval registers a pending request. Registering the same
	// request id twice is a no-op.
	RequestApproval(ctx context.Context, request *Request) error

	// ListPending returns requests awaiting a decision.
	ListPending(ctx context.Context) ([]*Request, error)

	// Decide records a decision for a pending request and signals the
	// owning process. It fails if the request is unknown or already decided.
	Decide(ctx context.Context, id string, approved bool, reason string) (*Decision, error)

	// Queue exposes the approval event queue for external consumers.
	Queue() messaging.Queue[Event]
}
