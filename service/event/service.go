package event

import (
	"reflect"
	"sync"

	"github.com/viant/fulfillment/service/messaging/memory"
)

// Service manages typed publishers and listeners backed by in-memory queues.
type Service struct {
	publisher       *Publisher[any]
	listener        *Listener[any]
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]any
	mux             sync.RWMutex
	newQueueConfig  func(name string) memory.Config
}

// Option customizes the event service.
type Option func(s *Service)

// WithQueueConfig overrides the per-queue configuration factory.
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) { s.newQueueConfig = newConfig }
}

// New creates an event service.
func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](memory.NewQueue[Event[any]](ret.newQueueConfig("any")))
	return ret
}

// SetListener installs a handler observing every published event regardless
// of payload type.
func (s *Service) SetListener(handler func(*Event[any])) {
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType != nil && rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// PublisherOf returns the publisher for the provided payload type, creating
// it on first use.
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](memory.NewQueue[Event[T]](s.newQueueConfig(key.String())))
	publisher.anyQueue = s.publisher.queue
	s.mux.Lock()
	s.typedPublishers[key] = publisher
	s.mux.Unlock()
	return publisher
}

// SetListenerOf installs a handler for one payload type, replacing any
// previous listener of that type.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	s.mux.RLock()
	previous, ok := s.typedListeners[key]
	s.mux.RUnlock()
	if ok {
		previous.(*Listener[T]).Stop()
	}
	listener := NewListener[T](PublisherOf[T](s), handler)
	s.mux.Lock()
	s.typedListeners[key] = listener
	s.mux.Unlock()
	listener.Start()
}
