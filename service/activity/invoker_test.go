package activity

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fulfillment/model"
)

type flakyService struct {
	mu        sync.Mutex
	failures  int
	calls     int
	terminal  bool
	pickDelay time.Duration
}

func (s *flakyService) fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.terminal {
		return NewTerminalError(fmt.Errorf("store rejected the request"))
	}
	if s.calls <= s.failures {
		return fmt.Errorf("transient failure %v", s.calls)
	}
	return nil
}

func (s *flakyService) AllocateToStores(ctx context.Context, order *model.Order) ([]*model.SubOrder, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []*model.SubOrder{{StoreID: "001"}}, nil
}

func (s *flakyService) PickItems(ctx context.Context, subOrder *model.SubOrder, processID string) (string, error) {
	if s.pickDelay > 0 {
		select {
		case <-time.After(s.pickDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := s.fail(); err != nil {
		return "", err
	}
	return "picked", nil
}

func (s *flakyService) Dispatch(ctx context.Context) error { return s.fail() }

func (s *flakyService) ConfirmDelivered(ctx context.Context) error { return s.fail() }

func TestInvokerRetriesTransientFailures(t *testing.T) {
	service := &flakyService{failures: 2}
	invoker := NewInvoker(service, Options{StartToCloseTimeout: time.Second, MaxRetries: 3, RetryDelay: time.Millisecond})

	subOrders, err := invoker.AllocateToStores(context.Background(), &model.Order{Items: []model.Item{{}}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(subOrders))
	assert.Equal(t, 3, service.calls)
}

func TestInvokerStopsOnTerminalError(t *testing.T) {
	service := &flakyService{terminal: true}
	invoker := NewInvoker(service, Options{StartToCloseTimeout: time.Second, MaxRetries: 5, RetryDelay: time.Millisecond})

	err := invoker.Dispatch(context.Background())
	assert.NotNil(t, err)
	assert.True(t, IsTerminal(err))
	assert.Equal(t, 1, service.calls)
}

func TestInvokerExhaustsRetryBudget(t *testing.T) {
	service := &flakyService{failures: 10}
	invoker := NewInvoker(service, Options{StartToCloseTimeout: time.Second, MaxRetries: 2, RetryDelay: time.Millisecond})

	err := invoker.ConfirmDelivered(context.Background())
	assert.NotNil(t, err)
	assert.Equal(t, 3, service.calls)
}

func TestInvokerStartToCloseTimeout(t *testing.T) {
	service := &flakyService{pickDelay: 200 * time.Millisecond}
	invoker := NewInvoker(service, Options{StartToCloseTimeout: 10 * time.Millisecond, MaxRetries: 0, RetryDelay: time.Millisecond})

	_, err := invoker.PickItems(context.Background(), &model.SubOrder{}, "o-1-001")
	assert.NotNil(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(NewTerminalError(fmt.Errorf("no stock"))))
	assert.True(t, IsTerminal(fmt.Errorf("wrapped: %w", NewTerminalError(nil))))
	assert.False(t, IsTerminal(fmt.Errorf("transient")))
}
