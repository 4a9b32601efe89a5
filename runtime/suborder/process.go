package suborder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/fulfillment/internal/clock"
	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/approval"
	"github.com/viant/fulfillment/service/dao"
	"github.com/viant/fulfillment/service/event"
	"github.com/viant/fulfillment/service/messaging/memory"
	"github.com/viant/fulfillment/tracing"
)

// Compensation reason strings surfaced to the coordinator.
const (
	ReasonDenied          = "SubOrder denied"
	ReasonApprovalTimeout = "SubOrder denied due to approval timeout"
	ReasonRollback        = "rollback requested"
)

// Config holds the sub-order timing knobs.  The production defaults are long;
// tests shrink them to milliseconds.
type Config struct {
	// PickingDwell is the picking-to-dispatch latency during which a rollback
	// request is still honoured.
	PickingDwell time.Duration `json:"pickingDwell" yaml:"pickingDwell"`

	// DispatchDelay separates the end of the dwell window from the dispatch
	// activity call.
	DispatchDelay time.Duration `json:"dispatchDelay" yaml:"dispatchDelay"`

	// DeliveryDelay separates dispatch from the delivery confirmation.
	DeliveryDelay time.Duration `json:"deliveryDelay" yaml:"deliveryDelay"`
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		PickingDwell:  40 * time.Second,
		DispatchDelay: 2 * time.Second,
		DeliveryDelay: 15 * time.Second,
	}
}

// Process owns one sub-order end to end.  All mutable state is owned by the
// Run goroutine; the signal pump and queries observe it only through the
// guarded record and DAO-saved copies.
type Process struct {
	id       string
	parentID string
	subOrder *model.SubOrder
	approval *policy.Approval
	config   Config

	activities activity.Service
	processDAO dao.Service[string, execution.Process]
	events     *event.Service
	approvals  approval.Service

	signals       *memory.Queue[execution.Signal]
	approveLatch  *execution.Latch
	denyLatch     *execution.Latch
	rollbackLatch *execution.Latch
	compensation  *execution.Log

	mu     sync.RWMutex
	record *execution.Process

	done     chan *execution.Result
	doneOnce sync.Once
}

// New creates a sub-order process; id is the composite identifier assigned by
// the coordinator (parent id + store id).
func New(id, parentID string, subOrder *model.SubOrder, activities activity.Service, processDAO dao.Service[string, execution.Process], options ...Option) *Process {
	record := execution.NewProcess(id, parentID, execution.KindSubOrder, model.StateReceived)
	subOrder = subOrder.Clone()
	subOrder.State = model.StateReceived
	record.SubOrder = subOrder
	ret := &Process{
		id:            id,
		parentID:      parentID,
		subOrder:      subOrder,
		config:        DefaultConfig(),
		activities:    activities,
		processDAO:    processDAO,
		signals:       memory.NewQueue[execution.Signal](memory.DefaultConfig()),
		approveLatch:  execution.NewLatch(),
		denyLatch:     execution.NewLatch(),
		rollbackLatch: execution.NewLatch(),
		compensation:  execution.NewLog(),
		record:        record,
		done:          make(chan *execution.Result, 1),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Option customizes a sub-order process.
type Option func(*Process)

// WithConfig overrides the timing configuration.
func WithConfig(config Config) Option {
	return func(p *Process) { p.config = config }
}

// WithApproval overrides the approval policy.
func WithApproval(approval *policy.Approval) Option {
	return func(p *Process) { p.approval = approval }
}

// WithEventService attaches the observability event service.
func WithEventService(events *event.Service) Option {
	return func(p *Process) { p.events = events }
}

// WithApprovalService registers gated sub-orders with an approval inbox so
// that operators can list and decide pending requests.
func WithApprovalService(approvals approval.Service) Option {
	return func(p *Process) { p.approvals = approvals }
}

// ID returns the composite process identifier.
func (p *Process) ID() string {
	return p.id
}

// Status returns the current state; it never blocks on the running state
// machine.
func (p *Process) Status() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.record.State
}

// Snapshot returns a copy of the process record.
func (p *Process) Snapshot() *execution.Process {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.record.Clone()
}

// Done exposes the completion future resolved with the terminal result.
func (p *Process) Done() <-chan *execution.Result {
	return p.done
}

// Signal publishes a named signal into the process mailbox; delivery is
// fire-and-forget.
func (p *Process) Signal(ctx context.Context, name string) error {
	if err := execution.ValidateSignal(name); err != nil {
		return err
	}
	return p.signals.Publish(ctx, &execution.Signal{Name: name, ProcessID: p.id, EmittedAt: clock.Now()})
}

// Run executes the state machine until a terminal state and resolves the
// completion future.  It is the only writer of process state.
func (p *Process) Run(ctx context.Context) *execution.Result {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, "suborder.run", "INTERNAL")
	span.WithAttributes(map[string]string{"processID": p.id, "storeID": p.subOrder.StoreID})

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go p.pumpSignals(pumpCtx)

	p.save(ctx)
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
	if p.approval.RequiresApproval(p.subOrder.SubTotal) {
		if reason, ok := p.awaitApproval(ctx); !ok {
			return p.compensate(ctx, reason)
		}
	}

	p.transition(ctx, model.StatePicking)
	report, err := p.activities.PickItems(ctx, p.subOrder.Clone(), p.id)
	if err != nil {
		return p.compensate(ctx, fmt.Sprintf("picking failed: %v", err))
	}
	p.emitPicked(ctx, report)

	// picking-to-dispatch dwell, still cancellable
	select {
	case <-p.rollbackLatch.Done():
		return p.compensate(ctx, ReasonRollback)
	case <-ctx.Done():
		return p.compensate(ctx, ctx.Err().Error())
	case <-time.After(p.config.PickingDwell):
	}

	if err = p.sleep(ctx, p.config.DispatchDelay); err != nil {
		return p.compensate(ctx, err.Error())
	}
	if err = p.activities.Dispatch(ctx); err != nil {
		return p.compensate(ctx, fmt.Sprintf("dispatch failed: %v", err))
	}
	p.transition(ctx, model.StateDispatched)

	if err = p.sleep(ctx, p.config.DeliveryDelay); err != nil {
		return p.compensate(ctx, err.Error())
	}
	if err = p.activities.ConfirmDelivered(ctx); err != nil {
		return p.compensate(ctx, fmt.Sprintf("delivery confirmation failed: %v", err))
	}
	p.transition(ctx, model.StateDelivered)

	// no rollback is reachable from a terminal success
	p.compensation.Discard()
	return &execution.Result{ProcessID: p.id, State: model.StateDelivered}
}

// awaitApproval runs the approval gate.  It races approval, denial, rollback
// and the timeout; ties are broken by a fixed priority: approval > denial >
// rollback > timeout.
func (p *Process) awaitApproval(ctx context.Context) (string, bool) {
	if p.approval.EffectiveMode() == policy.ModeDeny {
		return ReasonDenied, false
	}
	p.transition(ctx, model.StateAwaitingApproval)
	p.registerApprovalRequest(ctx)

	timeout := time.NewTimer(p.approval.EffectiveTimeout())
	defer timeout.Stop()
	select {
	case <-p.approveLatch.Done():
	case <-p.denyLatch.Done():
	case <-p.rollbackLatch.Done():
	case <-timeout.C:
	case <-ctx.Done():
		return ctx.Err().Error(), false
	}
	switch {
	case p.approveLatch.IsSet():
		return "", true
	case p.denyLatch.IsSet():
		return ReasonDenied, false
	case p.rollbackLatch.IsSet():
		return ReasonRollback, false
	default:
		return ReasonApprovalTimeout, false
	}
}

func (p *Process) registerApprovalRequest(ctx context.Context) {
	if p.approvals == nil {
		return
	}
	expiresAt := clock.Now().Add(p.approval.EffectiveTimeout())
	_ = p.approvals.RequestApproval(ctx, &approval.Request{
		ID:        p.id,
		ProcessID: p.parentID,
		StoreID:   p.subOrder.StoreID,
		SubTotal:  p.subOrder.SubTotal,
		ExpiresAt: &expiresAt,
	})
}

// compensate unwinds the completed transitions most-recent-first and settles
// the process in the terminal ROLLBACK state.  The engine records that
// compensation occurred per stage; undoing a stage against an external system
// is left to out-of-band handling.
func (p *Process) compensate(ctx context.Context, reason string) *execution.Result {
	for {
		state, ok := p.compensation.Pop()
		if !ok {
			break
		}
		p.emit(ctx, event.TypeCompensation, state)
	}
	p.mu.Lock()
	p.record.Reason = reason
	p.record.SetState(model.StateRollback)
	p.record.SubOrder.State = model.StateRollback
	p.subOrder.State = model.StateRollback
	p.mu.Unlock()
	p.save(ctx)
	p.emit(ctx, event.TypeStatusChanged, reason)
	return &execution.Result{
		ProcessID: p.id,
		State:     model.StateRollback,
		Reason:    reason,
		Err:       fmt.Errorf("suborder %v rolled back: %v", p.id, reason),
	}
}

// pumpSignals drains the mailbox into the latches.  Latches make duplicate
// deliveries idempotent; a rollback is only accepted while the state machine
// has not dispatched yet.
func (p *Process) pumpSignals(ctx context.Context) {
	for {
		msg, err := p.signals.Consume(ctx)
		if err != nil {
			return
		}
		signal := msg.T()
		_ = msg.Ack()
		switch signal.Name {
		case execution.SignalApprove:
			p.approveLatch.Set(execution.SignalApprove)
			p.emit(ctx, event.TypeSignalReceived, execution.SignalApprove)
		case execution.SignalDeny:
			p.denyLatch.Set(execution.SignalDeny)
			p.emit(ctx, event.TypeSignalReceived, execution.SignalDeny)
		case execution.SignalRollback:
			p.acceptRollback(ctx)
		}
	}
}

func (p *Process) acceptRollback(ctx context.Context) {
	switch p.Status() {
	case model.StateReceived, model.StateAwaitingApproval, model.StatePicking:
		if p.rollbackLatch.IsSet() {
			// duplicate delivery, nothing to do
			p.emit(ctx, event.TypeSignalIgnored, "already rolling back")
			return
		}
		p.rollbackLatch.Set(execution.SignalRollback)
		p.emit(ctx, event.TypeSignalReceived, execution.SignalRollback)
	default:
		// compensation after dispatch is not supported; later-stage rollback
		// is handled by a separate out-of-band process
		p.emit(ctx, event.TypeSignalIgnored, fmt.Sprintf("cannot rollback from %v", p.Status()))
	}
}

// transition advances the forward path: updates the owned record, appends the
// completed state to the compensation log and persists a snapshot.
func (p *Process) transition(ctx context.Context, state string) {
	p.mu.Lock()
	p.record.SetState(state)
	p.record.SubOrder.State = state
	p.subOrder.State = state
	p.mu.Unlock()
	p.compensation.Push(state)
	p.save(ctx)
	p.emit(ctx, event.TypeStatusChanged, state)
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
	}
}

func (p *Process) emit(ctx context.Context, eventType, reason string) {
	if p.events == nil {
		return
	}
	publisher := event.PublisherOf[*model.SubOrder](p.events)
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		ProcessID: p.id,
		Kind:      execution.KindSubOrder,
		EventType: eventType,
		StoreID:   p.subOrder.StoreID,
		Reason:    reason,
	}, p.Snapshot().SubOrder))
}

func (p *Process) emitPicked(ctx context.Context, report string) {
	if p.events == nil {
		return
	}
	publisher := event.PublisherOf[model.Item](p.events)
	for _, item := range p.subOrder.Items {
		_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
			ProcessID: p.id,
			Kind:      execution.KindSubOrder,
			EventType: event.TypeItemPicked,
			StoreID:   p.subOrder.StoreID,
		}, item))
	}
	p.emit(ctx, event.TypeActivity, report)
}
