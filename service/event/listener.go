package event

import (
	"context"
)

// Listener pumps events from a publisher into a handler on its own goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
}

// NewListener creates a listener; call Start to begin consumption.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{publisher: publisher, handler: handler}
}

// Start begins consuming events until Stop is called.
func (l *Listener[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		for {
			anEvent, err := l.publisher.Consume(ctx)
			if err != nil {
				return
			}
			if anEvent != nil {
				l.handler(anEvent)
			}
		}
	}()
}

// Stop terminates the consumption loop.
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
