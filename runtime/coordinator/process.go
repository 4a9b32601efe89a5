package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/fulfillment/internal/clock"
	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/progress"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/runtime/suborder"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/approval"
	"github.com/viant/fulfillment/service/dao"
	"github.com/viant/fulfillment/service/event"
	"github.com/viant/fulfillment/tracing"
)

// Config holds coordinator timing knobs.
type Config struct {
	// AllocationDelay precedes the allocation activity call.
	AllocationDelay time.Duration `json:"allocationDelay" yaml:"allocationDelay"`
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{AllocationDelay: 4 * time.Second}
}

// Process coordinates one order.  The Run goroutine is the only writer of
// coordinator state; children report back exclusively through completion
// futures.
type Process struct {
	id       string
	order    *model.Order
	approval *policy.Approval
	config   Config
	subCfg   suborder.Config

	activities activity.Service
	processDAO dao.Service[string, execution.Process]
	events     *event.Service
	approvals  approval.Service

	cancel *execution.Latch

	mu         sync.RWMutex
	record     *execution.Process
	children   map[string]*suborder.Process
	childOrder []string

	done     chan *execution.Result
	doneOnce sync.Once
}

// Option customizes a coordinator process.
type Option func(*Process)

// WithConfig overrides the coordinator timings.
func WithConfig(config Config) Option {
	return func(p *Process) { p.config = config }
}

// WithSubOrderConfig overrides the sub-order timings.
func WithSubOrderConfig(config suborder.Config) Option {
	return func(p *Process) { p.subCfg = config }
}

// WithApproval overrides the approval policy applied to all sub-orders.
func WithApproval(approval *policy.Approval) Option {
	return func(p *Process) { p.approval = approval }
}

// WithEventService attaches the observability event service.
func WithEventService(events *event.Service) Option {
	return func(p *Process) { p.events = events }
}

// WithApprovalService registers gated sub-orders with an approval inbox.
func WithApprovalService(approvals approval.Service) Option {
	return func(p *Process) { p.approvals = approvals }
}

// New creates an order coordinator process.
func New(id string, order *model.Order, activities activity.Service, processDAO dao.Service[string, execution.Process], options ...Option) *Process {
	record := execution.NewProcess(id, "", execution.KindOrder, execution.StatusReceived)
	record.Order = order
	record.SubOrders = map[string]string{}
	ret := &Process{
		id:         id,
		order:      order,
		config:     DefaultConfig(),
		subCfg:     suborder.DefaultConfig(),
		activities: activities,
		processDAO: processDAO,
		cancel:     execution.NewLatch(),
		record:     record,
		children:   map[string]*suborder.Process{},
		done:       make(chan *execution.Result, 1),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// ID returns the order process identifier.
func (p *Process) ID() string {
	return p.id
}

// Status returns the coordinator status; it never blocks the running saga.
func (p *Process) Status() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.record.State
}

// Snapshot returns a copy of the coordinator record including the last known
// sub-order states.
func (p *Process) Snapshot() *execution.Process {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.record.Clone()
}

// OrderJSON returns the received order as indented JSON.
func (p *Process) OrderJSON() string {
	return p.order.JSONString()
}

// SubOrderIDs lists the composite identifiers of all spawned sub-orders in
// spawn order.
func (p *Process) SubOrderIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.childOrder...)
}

// SubOrder returns the handle of a spawned sub-order process, nil when
// unknown.
func (p *Process) SubOrder(id string) *suborder.Process {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.children[id]
}

// Cancel requests a cooperative rollback of the whole order.
func (p *Process) Cancel(reason string) {
	if reason == "" {
		reason = "cancellation requested"
	}
	p.cancel.Set(reason)
}

// Done exposes the completion future resolved with the terminal result.
func (p *Process) Done() <-chan *execution.Result {
	return p.done
}

// Run executes the saga and resolves the completion future.
func (p *Process) Run(ctx context.Context) *execution.Result {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, "order.run", "INTERNAL")
	span.WithAttributes(map[string]string{"processID": p.id})

	result := p.run(ctx)
	result.TimeTaken = clock.Now().Sub(started)
	tracing.EndSpan(span, result.Err)
	p.doneOnce.Do(func() {
		p.done <- result
		close(p.done)
	})
	return result
}

func (p *Process) run(ctx context.Context) *execution.Result {
	if err := p.order.Validate(); err != nil {
		p.setStatus(ctx, execution.StatusRollback, err.Error())
		return &execution.Result{ProcessID: p.id, State: execution.StatusRollback, Reason: err.Error(), Err: err}
	}
	p.setStatus(ctx, execution.StatusReceived, "")
	p.setStatus(ctx, execution.StatusAllocating, "")
	if err := p.sleep(ctx, p.config.AllocationDelay); err != nil {
		return p.finishRollback(ctx, err.Error(), nil)
	}

	subOrders, err := p.activities.AllocateToStores(ctx, p.order)
	if err != nil {
		reason := fmt.Sprintf("allocation failed: %v", err)
		p.setStatus(ctx, execution.StatusRollback, reason)
		return &execution.Result{ProcessID: p.id, State: execution.StatusRollback, Reason: reason, Err: fmt.Errorf("order %v: %v", p.id, reason)}
	}

	p.setStatus(ctx, execution.StatusStartingSuborders, "")
	tracker, _ := progress.FromContext(ctx)
	results := make(chan *execution.Result, len(subOrders))
	for _, subOrder := range subOrders {
		p.spawn(ctx, subOrder, tracker, results)
	}
	p.setStatus(ctx, execution.StatusSubordersStarted, "")

	allDone := make(chan struct{})
	go p.collect(ctx, len(subOrders), results, tracker, allDone)

	select {
	case <-allDone:
		if p.cancel.IsSet() {
			// the last resolving future carried the failure
			return p.finishRollback(ctx, p.cancel.Reason(), allDone)
		}
		p.setStatus(ctx, execution.StatusCompleted, "")
		return &execution.Result{ProcessID: p.id, State: execution.StatusCompleted}
	case <-p.cancel.Done():
		return p.finishRollback(ctx, p.cancel.Reason(), allDone)
	}
}

// spawn starts one sub-order process under a composite identifier and wires
// its completion future into the aggregation channel.
func (p *Process) spawn(ctx context.Context, subOrder *model.SubOrder, tracker *progress.Progress, results chan<- *execution.Result) {
	childID := fmt.Sprintf("%v-%v", p.id, subOrder.StoreID)
	child := suborder.New(childID, p.id, subOrder, p.activities, p.processDAO,
		suborder.WithConfig(p.subCfg),
		suborder.WithApproval(p.approval),
		suborder.WithEventService(p.events),
		suborder.WithApprovalService(p.approvals),
	)
	p.mu.Lock()
	p.children[childID] = child
	p.childOrder = append(p.childOrder, childID)
	p.record.SubOrders[childID] = model.StateReceived
	p.mu.Unlock()
	p.save(ctx)
	tracker.Update(progress.Delta{SubOrders: 1, Running: 1})

	go child.Run(ctx)
	go func() {
		result := <-child.Done()
		results <- result
	}()
}

// collect applies child results as they resolve; the first failure trips the
// cancellation latch.  A child failure is converted into a state update, it
// never faults the coordinator.
func (p *Process) collect(ctx context.Context, pending int, results <-chan *execution.Result, tracker *progress.Progress, allDone chan<- struct{}) {
	for ; pending > 0; pending-- {
		result := <-results
		state := result.State
		delta := progress.Delta{Running: -1}
		switch {
		case result.State == model.StateRollback && result.Reason == suborder.ReasonRollback:
			delta.RolledBack = 1
		case result.Err != nil:
			state = model.StateFailed
			delta.Failed = 1
		default:
			delta.Delivered = 1
		}
		p.mu.Lock()
		p.record.SubOrders[result.ProcessID] = state
		p.mu.Unlock()
		p.save(ctx)
		tracker.Update(delta)
		if result.Err != nil {
			// the latch is set once, a coordinator-initiated rollback keeps
			// its original reason
			p.cancel.Set(fmt.Sprintf("suborder %v failed: %v", result.ProcessID, result.Reason))
		}
	}
	close(allDone)
}

// finishRollback signals rollback to every sub-order whose last known state
// is not FAILED, waits for all futures to resolve and surfaces the triggering
// cause to the caller.
func (p *Process) finishRollback(ctx context.Context, reason string, allDone <-chan struct{}) *execution.Result {
	p.rollbackSubOrders(ctx)
	if allDone != nil {
		<-allDone
	}
	p.setStatus(ctx, execution.StatusRollback, reason)
	return &execution.Result{
		ProcessID: p.id,
		State:     execution.StatusRollback,
		Reason:    reason,
		Err:       fmt.Errorf("order %v rolled back: %v", p.id, reason),
	}
}

func (p *Process) rollbackSubOrders(ctx context.Context) {
	p.mu.RLock()
	ids := append([]string(nil), p.childOrder...)
	states := make(map[string]string, len(ids))
	for _, id := range ids {
		states[id] = p.record.SubOrders[id]
	}
	children := make(map[string]*suborder.Process, len(ids))
	for _, id := range ids {
		children[id] = p.children[id]
	}
	p.mu.RUnlock()

	for _, id := range ids {
		if states[id] == model.StateFailed {
			// failed on its own, already terminal
			continue
		}
		if child := children[id]; child != nil {
			_ = child.Signal(ctx, execution.SignalRollback)
			p.emit(ctx, event.TypeSignalSent, fmt.Sprintf("rollback sent to %v", id))
		}
	}
}

func (p *Process) setStatus(ctx context.Context, status, reason string) {
	p.mu.Lock()
	if reason != "" {
		p.record.Reason = reason
	}
	p.record.SetState(status)
	p.mu.Unlock()
	p.save(ctx)
	p.emit(ctx, event.TypeStatusChanged, status)
}

func (p *Process) save(ctx context.Context) {
	if p.processDAO == nil {
		return
	}
	_ = p.processDAO.Save(ctx, p.Snapshot())
}

func (p *Process) sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.cancel.Done():
		return fmt.Errorf("%v", p.cancel.Reason())
	}
}

func (p *Process) emit(ctx context.Context, eventType, reason string) {
	if p.events == nil {
		return
	}
	publisher := event.PublisherOf[*execution.Process](p.events)
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		ProcessID: p.id,
		Kind:      execution.KindOrder,
		EventType: eventType,
		Reason:    reason,
	}, p.Snapshot()))
}
