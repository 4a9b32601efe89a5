// Package memory provides the in-process queue implementation backing signal
// and event delivery when the engine runs embedded in a single host process.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/fulfillment/internal/idgen"
	"github.com/viant/fulfillment/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRedeliveries int
	RedeliveryDelay time.Duration
	QueueBuffer     int
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRedeliveries: 3,
		RedeliveryDelay: 10 * time.Millisecond,
		QueueBuffer:     100,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	deliveries int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack indicates a failure in processing the message.  Under the redelivery
// budget the payload is republished after a delay - receivers therefore see
// duplicate-looking messages and have to handle them idempotently.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	m.deliveries++
	if m.deliveries > m.queue.config.MaxRedeliveries {
		m.queue.dropped.Add(1)
		return nil
	}
	go func() {
		time.Sleep(m.queue.config.RedeliveryDelay)
		m.queue.redeliver(&Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			deliveries: m.deliveries,
			createdAt:  time.Now(),
		})
	}()
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	dropped  atomicCounter
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPublish adds a new item only when the buffer has capacity, dropped
// items are counted
func (q *Queue[T]) TryPublish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
	default:
		q.dropped.Add(1)
	}
	return nil
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Dropped returns the number of messages discarded after exhausting the
// redelivery budget.
func (q *Queue[T]) Dropped() int {
	return q.dropped.Value()
}

func (q *Queue[T]) redeliver(msg *Message[T]) {
	select {
	case q.messages <- msg:
	default:
		q.dropped.Add(1)
	}
}

type atomicCounter struct {
	mu    sync.Mutex
	value int
}

func (c *atomicCounter) Add(delta int) {
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
}

func (c *atomicCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
