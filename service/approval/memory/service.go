package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/fulfillment/internal/clock"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/approval"
	"github.com/viant/fulfillment/service/dao/store"
	"github.com/viant/fulfillment/service/messaging"
	qmem "github.com/viant/fulfillment/service/messaging/memory"
)

type service struct {
	// DAO-backed stores
	reqDAO *store.MemoryStore[string, approval.Request]
	decDAO *store.MemoryStore[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]

	// signaler routes a decision to the owning process (optional - the
	// service can be used as a standalone inbox without signal delivery).
	signaler approval.Signaler
}

// key selectors - grab ID field
func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

// New creates an in-memory approval service.
func New(options ...Option) approval.Service {
	ret := &service{
		reqDAO: store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO: store.NewMemoryStore[string, approval.Decision](decKey),
		events: qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestApproval(ctx context.Context, request *approval.Request) error {
	if request == nil || request.ID == "" {
		return errors.New("invalid request")
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = clock.Now()
	}
	// Idempotent save - overwrite any previous copy to handle re-submissions
	// gracefully.
	_ = s.reqDAO.Save(ctx, request)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: request})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.reqDAO.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, r := range all {
		if d, _ := s.decDAO.Load(ctx, r.ID); d == nil {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string, approved bool, reason string) (*approval.Decision, error) {
	if id == "" {
		return nil, errors.New("empty id")
	}
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return nil, fmt.Errorf("request %s not found", id)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return nil, fmt.Errorf("already decided")
	}

	decision := &approval.Decision{
		ID:        id,
		Approved:  approved,
		Reason:    reason,
		DecidedAt: clock.Now(),
	}
	_ = s.decDAO.Save(ctx, decision)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: decision})

	if s.signaler != nil {
		signal := execution.SignalApprove
		if !approved {
			signal = execution.SignalDeny
		}
		if err := s.signaler(ctx, id, signal, reason); err != nil {
			return decision, err
		}
	}
	return decision, nil
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
