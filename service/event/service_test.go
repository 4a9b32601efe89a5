package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type transition struct {
	From string
	To   string
}

func TestTypedPublisherAndListener(t *testing.T) {
	service := New()
	var mu sync.Mutex
	var seen []transition

	SetListenerOf[transition](service, func(e *Event[transition]) {
		mu.Lock()
		seen = append(seen, e.Data)
		mu.Unlock()
	})

	publisher := PublisherOf[transition](service)
	ctx := context.Background()
	err := publisher.Publish(ctx, NewEvent(&Context{ProcessID: "o-1-001", EventType: TypeStatusChanged}, transition{From: "RECEIVED", To: "PICKING"}))
	assert.Nil(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0].To == "PICKING"
	}, time.Second, time.Millisecond)
}

func TestPublishNeverBlocksWithoutAnyListener(t *testing.T) {
	service := New()
	var mu sync.Mutex
	var seen int
	// only a typed listener, nothing drains the service-wide queue
	SetListenerOf[transition](service, func(e *Event[transition]) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	publisher := PublisherOf[transition](service)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 150; i++ {
			_ = publisher.Publish(context.Background(), NewEvent(&Context{ProcessID: "p", EventType: TypeStatusChanged}, transition{}))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher stalled on a saturated queue")
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen > 0
	}, time.Second, time.Millisecond)
}

func TestAnyListenerObservesTypedEvents(t *testing.T) {
	service := New()
	var mu sync.Mutex
	var count int
	service.SetListener(func(e *Event[any]) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	publisher := PublisherOf[transition](service)
	assert.Nil(t, publisher.Publish(context.Background(), NewEvent(&Context{ProcessID: "p", EventType: TypeStatusChanged}, transition{})))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, time.Millisecond)
}
