package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/fulfillment/internal/idgen"
	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/runtime/coordinator"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/approval"
	"github.com/viant/fulfillment/service/dao"
	"github.com/viant/fulfillment/service/dao/order"
	"github.com/viant/fulfillment/service/event"
)

// Runtime represents the order orchestration runtime.
type Runtime struct {
	config     *Config
	approval   *policy.Approval
	activities activity.Service
	orderDAO   *order.Service
	processDAO dao.Service[string, execution.Process]
	archiveDAO dao.Service[string, execution.Process]
	events     *event.Service
	approvals  approval.Service

	mu           sync.RWMutex
	coordinators map[string]*coordinator.Process
}

// LoadOrder loads an order document from an afs-addressable location.
func (r *Runtime) LoadOrder(ctx context.Context, location string) (*model.Order, error) {
	return r.orderDAO.Load(ctx, location)
}

// StartOrder starts a new order process. The returned wait function blocks
// until the saga settles in COMPLETED or ROLLBACK.
func (r *Runtime) StartOrder(ctx context.Context, anOrder *model.Order) (*coordinator.Process, execution.Wait, error) {
	if anOrder == nil {
		return nil, nil, fmt.Errorf("order is nil")
	}
	if err := anOrder.Validate(); err != nil {
		return nil, nil, err
	}
	if anOrder.ID == "" {
		// the caller's order stays untouched, identity lives on the copy
		clone := *anOrder
		clone.ID = idgen.New()
		anOrder = &clone
	}
	id := fmt.Sprintf("order-%v", anOrder.ID)
	process := coordinator.New(id, anOrder, r.activities, r.processDAO,
		coordinator.WithConfig(r.config.Coordinator),
		coordinator.WithSubOrderConfig(r.config.SubOrder),
		coordinator.WithApproval(r.effectiveApproval(ctx)),
		coordinator.WithEventService(r.events),
		coordinator.WithApprovalService(r.approvals),
	)
	r.mu.Lock()
	if _, ok := r.coordinators[id]; ok {
		r.mu.Unlock()
		return nil, nil, fmt.Errorf("order %v already started", id)
	}
	r.coordinators[id] = process
	r.mu.Unlock()

	go func() {
		process.Run(ctx)
		r.archive(ctx, process)
	}()

	wait := func(ctx context.Context, timeout time.Duration) (*execution.Result, error) {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case result := <-process.Done():
			return result, nil
		case <-timer.C:
			return nil, fmt.Errorf("timeout waiting for order %v", id)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return process, wait, nil
}

// effectiveApproval prefers a per-run policy carried in the context over the
// runtime-wide one.
func (r *Runtime) effectiveApproval(ctx context.Context) *policy.Approval {
	if p := policy.FromContext(ctx); p != nil {
		return p
	}
	return r.approval
}

// Signal delivers a named signal to a sub-order process.
func (r *Runtime) Signal(ctx context.Context, processID, name string) error {
	if err := execution.ValidateSignal(name); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, process := range r.coordinators {
		if child := process.SubOrder(processID); child != nil {
			return child.Signal(ctx, name)
		}
	}
	return fmt.Errorf("process %v not found", processID)
}

// Cancel requests a cooperative rollback of a running order.
func (r *Runtime) Cancel(ctx context.Context, processID, reason string) error {
	r.mu.RLock()
	process, ok := r.coordinators[processID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("order %v not found", processID)
	}
	process.Cancel(reason)
	return nil
}

// Order returns the live handle of a started order process, nil when
// unknown.
func (r *Runtime) Order(id string) *coordinator.Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coordinators[id]
}

// Process returns the last saved snapshot of an order or sub-order process.
func (r *Runtime) Process(ctx context.Context, id string) (*execution.Process, error) {
	return r.processDAO.Load(ctx, id)
}

// Processes lists saved process snapshots, optionally filtered.
func (r *Runtime) Processes(ctx context.Context, parameter ...*dao.Parameter) ([]*execution.Process, error) {
	return r.processDAO.List(ctx, parameter...)
}

// archive copies the terminal snapshots of an order and its sub-orders into
// the archive DAO.
func (r *Runtime) archive(ctx context.Context, process *coordinator.Process) {
	if r.archiveDAO == nil {
		return
	}
	ids := append([]string{process.ID()}, process.SubOrderIDs()...)
	for _, id := range ids {
		snapshot, err := r.processDAO.Load(ctx, id)
		if err != nil || snapshot == nil {
			continue
		}
		_ = r.archiveDAO.Save(ctx, snapshot)
	}
}
