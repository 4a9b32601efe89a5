package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/progress"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/runtime/suborder"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/activity/local"
	pmemory "github.com/viant/fulfillment/service/dao/process/memory"
	"github.com/viant/fulfillment/service/event"
)

func testOrder() *model.Order {
	return &model.Order{
		ID: "o-1001",
		Items: []model.Item{
			{ProductName: "Apples", UnitPrice: 300, Quantity: 2},
			{ProductName: "Bread", UnitPrice: 250, Quantity: 1},
			{ProductName: "Milk", UnitPrice: 180, Quantity: 3},
			{ProductName: "Coffee", UnitPrice: 1200, Quantity: 1},
		},
	}
}

func fastConfigs() (Config, suborder.Config) {
	return Config{AllocationDelay: time.Millisecond},
		suborder.Config{
			PickingDwell:  10 * time.Millisecond,
			DispatchDelay: time.Millisecond,
			DeliveryDelay: 5 * time.Millisecond,
		}
}

// failingGateway delegates to the local gateway but fails picking for one
// store.
type failingGateway struct {
	activity.Service
	failStoreID string
}

func (f *failingGateway) PickItems(ctx context.Context, subOrder *model.SubOrder, processID string) (string, error) {
	if subOrder != nil && subOrder.StoreID == f.failStoreID {
		return "", activity.NewTerminalError(fmt.Errorf("store %v offline", f.failStoreID))
	}
	return f.Service.PickItems(ctx, subOrder, processID)
}

func TestProcess_AllSubOrdersDelivered(t *testing.T) {
	config, subConfig := fastConfigs()
	processDAO := pmemory.New()
	process := New("order-1", testOrder(), local.New(), processDAO,
		WithConfig(config), WithSubOrderConfig(subConfig))

	ctx, tracker := progress.WithNewTracker(context.Background(), "order-1", "o-1001", nil)
	result := process.Run(ctx)
	assert.Equal(t, execution.StatusCompleted, result.State)
	assert.Nil(t, result.Err)

	snapshot, err := processDAO.Load(ctx, "order-1")
	assert.Nil(t, err)
	assert.Equal(t, execution.StatusCompleted, snapshot.State)
	assert.Equal(t, 2, len(snapshot.SubOrders))
	for id, state := range snapshot.SubOrders {
		assert.Equal(t, model.StateDelivered, state, id)
	}

	counters := tracker.Snapshot()
	assert.Equal(t, 2, counters.SubOrders)
	assert.Equal(t, 0, counters.Running)
	assert.Equal(t, 2, counters.Delivered)
}

func TestProcess_ChildFailureRollsBackSiblings(t *testing.T) {
	config, subConfig := fastConfigs()
	subConfig.PickingDwell = 300 * time.Millisecond

	events := event.New()
	var mu sync.Mutex
	var rollbacksSent int
	event.SetListenerOf[*execution.Process](events, func(e *event.Event[*execution.Process]) {
		if e.Context.EventType == event.TypeSignalSent {
			mu.Lock()
			rollbacksSent++
			mu.Unlock()
		}
	})

	processDAO := pmemory.New()
	gateway := &failingGateway{Service: local.New(), failStoreID: "002"}
	process := New("order-1", testOrder(), gateway, processDAO,
		WithConfig(config), WithSubOrderConfig(subConfig), WithEventService(events))

	result := process.Run(context.Background())
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.NotNil(t, result.Err)
	assert.Contains(t, result.Reason, "order-1-002 failed")

	snapshot, err := processDAO.Load(context.Background(), "order-1")
	assert.Nil(t, err)
	assert.Equal(t, execution.StatusRollback, snapshot.State)
	assert.Equal(t, model.StateFailed, snapshot.SubOrders["order-1-002"])
	assert.Equal(t, model.StateRollback, snapshot.SubOrders["order-1-001"])

	// the failed sub-order is already terminal, only the sibling is signalled
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, rollbacksSent)
}

func TestProcess_Cancel(t *testing.T) {
	config, subConfig := fastConfigs()
	subConfig.PickingDwell = 300 * time.Millisecond
	processDAO := pmemory.New()
	process := New("order-1", testOrder(), local.New(), processDAO,
		WithConfig(config), WithSubOrderConfig(subConfig))

	go process.Run(context.Background())
	assert.Eventually(t, func() bool {
		return process.Status() == execution.StatusSubordersStarted
	}, time.Second, time.Millisecond)

	process.Cancel("operator change of mind")
	result := <-process.Done()
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.Equal(t, "operator change of mind", result.Reason)

	snapshot, err := processDAO.Load(context.Background(), "order-1")
	assert.Nil(t, err)
	for id, state := range snapshot.SubOrders {
		assert.Equal(t, model.StateRollback, state, id)
	}
}

func TestProcess_DeniedSubOrderRollsBackOrder(t *testing.T) {
	config, subConfig := fastConfigs()
	subConfig.PickingDwell = 300 * time.Millisecond
	order := testOrder()
	// inflate one item so a single sub-order crosses the approval threshold
	order.Items[0].UnitPrice = 60000
	order.Items[0].Quantity = 1

	process := New("order-1", order, local.New(), pmemory.New(),
		WithConfig(config), WithSubOrderConfig(subConfig),
		WithApproval(&policy.Approval{Timeout: time.Second}))

	go process.Run(context.Background())
	var gated *suborder.Process
	assert.Eventually(t, func() bool {
		for _, id := range process.SubOrderIDs() {
			if child := process.SubOrder(id); child != nil && child.Status() == model.StateAwaitingApproval {
				gated = child
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	assert.Nil(t, gated.Signal(context.Background(), execution.SignalDeny))
	result := <-process.Done()
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.Contains(t, result.Reason, suborder.ReasonDenied)
}

func TestProcess_ChildRollbackSignalRollsBackOrder(t *testing.T) {
	config, subConfig := fastConfigs()
	subConfig.PickingDwell = 300 * time.Millisecond
	processDAO := pmemory.New()
	process := New("order-1", testOrder(), local.New(), processDAO,
		WithConfig(config), WithSubOrderConfig(subConfig))

	go process.Run(context.Background())
	target := "order-1-001"
	assert.Eventually(t, func() bool {
		child := process.SubOrder(target)
		return child != nil && child.Status() == model.StatePicking
	}, time.Second, time.Millisecond)

	// rollback sent to a single sub-order, not to the coordinator
	assert.Nil(t, process.SubOrder(target).Signal(context.Background(), execution.SignalRollback))
	result := <-process.Done()
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.Contains(t, result.Reason, target)

	snapshot, err := processDAO.Load(context.Background(), "order-1")
	assert.Nil(t, err)
	assert.Equal(t, execution.StatusRollback, snapshot.State)
	for id, state := range snapshot.SubOrders {
		assert.Equal(t, model.StateRollback, state, id)
	}
}

func TestProcess_EmptyOrder(t *testing.T) {
	config, subConfig := fastConfigs()
	process := New("order-1", &model.Order{ID: "o-1001"}, local.New(), pmemory.New(),
		WithConfig(config), WithSubOrderConfig(subConfig))

	result := process.Run(context.Background())
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.NotNil(t, result.Err)
}

type brokenAllocator struct {
	activity.Service
}

func (b *brokenAllocator) AllocateToStores(ctx context.Context, order *model.Order) ([]*model.SubOrder, error) {
	return nil, errors.New("catalogue unavailable")
}

func TestProcess_AllocationFailure(t *testing.T) {
	config, subConfig := fastConfigs()
	process := New("order-1", testOrder(), &brokenAllocator{Service: local.New()}, pmemory.New(),
		WithConfig(config), WithSubOrderConfig(subConfig))

	result := process.Run(context.Background())
	assert.Equal(t, execution.StatusRollback, result.State)
	assert.Contains(t, result.Reason, "allocation failed")
}
