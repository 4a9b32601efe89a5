package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name string
}

func TestQueuePublishConsume(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx := context.Background()

	err := queue.Publish(ctx, &payload{Name: "rollback"})
	assert.Nil(t, err)
	assert.Equal(t, 1, queue.Size())

	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "rollback", msg.T().Name)
	assert.Nil(t, msg.Ack())
	assert.NotNil(t, msg.Ack())
}

func TestQueueTryPublishDropsWhenFull(t *testing.T) {
	config := Config{MaxRedeliveries: 1, RedeliveryDelay: time.Millisecond, QueueBuffer: 2}
	queue := NewQueue[payload](config)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Nil(t, queue.TryPublish(ctx, &payload{Name: fmt.Sprintf("item-%v", i)}))
	}
	assert.Equal(t, 2, queue.Size())
	assert.Equal(t, 3, queue.Dropped())
}

func TestQueueRedelivery(t *testing.T) {
	config := DefaultConfig()
	config.RedeliveryDelay = time.Millisecond
	queue := NewQueue[payload](config)
	ctx := context.Background()

	assert.Nil(t, queue.Publish(ctx, &payload{Name: "approve"}))
	msg, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Nil(t, msg.Nack(fmt.Errorf("transient")))

	// nacked message comes back
	redeliveryCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err = queue.Consume(redeliveryCtx)
	assert.Nil(t, err)
	assert.Equal(t, "approve", msg.T().Name)
	assert.Nil(t, msg.Ack())
}

func TestQueueDropsAfterBudget(t *testing.T) {
	config := Config{MaxRedeliveries: 1, RedeliveryDelay: time.Millisecond, QueueBuffer: 4}
	queue := NewQueue[payload](config)
	ctx := context.Background()

	assert.Nil(t, queue.Publish(ctx, &payload{Name: "deny"}))
	for i := 0; i <= config.MaxRedeliveries; i++ {
		consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
		msg, err := queue.Consume(consumeCtx)
		cancel()
		assert.Nil(t, err)
		assert.Nil(t, msg.Nack(fmt.Errorf("still failing")))
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.Dropped())
}
