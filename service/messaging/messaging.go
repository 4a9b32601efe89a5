// Package messaging defines the abstract queue used to deliver signals and
// observability events between the engine and running processes.  Delivery is
// fire-and-forget from the publisher's perspective; the transport may redeliver
// a nacked message, so consumers must treat duplicates idempotently.
package messaging

import (
	"context"
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// TryPublish adds a new message without blocking; the transport drops
	// the payload when it has no capacity
	TryPublish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message; the transport may
	// redeliver it
	Nack(err error) error
}
