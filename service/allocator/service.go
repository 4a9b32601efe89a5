package allocator

import (
	"fmt"

	"github.com/viant/fulfillment/model"
)

// Store identifies a fulfillment location that can receive a sub-order.
type Store struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DefaultStores returns the built-in store set used when no stores were
// configured.
func DefaultStores() []Store {
	return []Store{
		{ID: "001", Name: "Store One"},
		{ID: "002", Name: "Store Two"},
	}
}

// Service allocates order items to stores.
type Service struct {
	stores []Store
}

// New creates a new allocator service for the supplied stores; with no stores
// the built-in set is used.
func New(stores ...Store) *Service {
	if len(stores) == 0 {
		stores = DefaultStores()
	}
	return &Service{stores: stores}
}

// Allocate splits the order items across the configured stores by round-robin
// index and accumulates each sub-order subtotal.  Every item lands in exactly
// one sub-order and the grouping is stable across repeated calls.
func (s *Service) Allocate(order *model.Order) ([]*model.SubOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("failed to allocate: %w", err)
	}
	subOrders := make([]*model.SubOrder, len(s.stores))
	for i, store := range s.stores {
		subOrders[i] = &model.SubOrder{
			StoreID:   store.ID,
			StoreName: store.Name,
			State:     model.StateReceived,
		}
	}
	for i := range order.Items {
		item := order.Items[i]
		subOrder := subOrders[i%len(subOrders)]
		subOrder.Items = append(subOrder.Items, item)
		subOrder.SubTotal += item.Total()
	}
	return subOrders, nil
}

// Stores returns the configured store set.
func (s *Service) Stores() []Store {
	return s.stores
}
