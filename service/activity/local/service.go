// Package local provides an in-process gateway implementation with simulated
// side effects; tests and the embedded reference deployment use it in place
// of real warehouse integrations.
package local

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/allocator"
)

// Service simulates the four fulfillment activities.
type Service struct {
	allocator *allocator.Service
	latency   time.Duration
}

// Option customizes the local gateway.
type Option func(*Service)

// WithLatency adds artificial latency to every call.
func WithLatency(latency time.Duration) Option {
	return func(s *Service) { s.latency = latency }
}

// WithAllocator overrides the store allocator.
func WithAllocator(service *allocator.Service) Option {
	return func(s *Service) { s.allocator = service }
}

// New creates a local gateway.
func New(options ...Option) *Service {
	ret := &Service{allocator: allocator.New()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *Service) AllocateToStores(ctx context.Context, order *model.Order) ([]*model.SubOrder, error) {
	if err := s.dwell(ctx); err != nil {
		return nil, err
	}
	return s.allocator.Allocate(order)
}

func (s *Service) PickItems(ctx context.Context, subOrder *model.SubOrder, processID string) (string, error) {
	if err := s.dwell(ctx); err != nil {
		return "", err
	}
	if subOrder == nil || len(subOrder.Items) == 0 {
		return "", activity.NewTerminalError(fmt.Errorf("suborder %v has no items to pick", processID))
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("picking %v item(s) for %v at %v", len(subOrder.Items), processID, subOrder.StoreName))
	for _, item := range subOrder.Items {
		lines = append(lines, fmt.Sprintf("  %v x%v @ %v", item.ProductName, item.Quantity, item.UnitPrice))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) Dispatch(ctx context.Context) error {
	return s.dwell(ctx)
}

func (s *Service) ConfirmDelivered(ctx context.Context) error {
	return s.dwell(ctx)
}

func (s *Service) dwell(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ activity.Service = (*Service)(nil)
