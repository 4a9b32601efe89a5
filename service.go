package fulfillment

import (
	"context"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/runtime/coordinator"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/activity/local"
	"github.com/viant/fulfillment/service/allocator"
	"github.com/viant/fulfillment/service/approval"
	amemory "github.com/viant/fulfillment/service/approval/memory"
	"github.com/viant/fulfillment/service/dao/order"
	pmemory "github.com/viant/fulfillment/service/dao/process/memory"
	"github.com/viant/fulfillment/service/event"
)

// Service represents the fulfillment service.
type Service struct {
	runtime         *Runtime
	config          *Config
	activities      activity.Service
	approvalService approval.Service
	eventService    *event.Service
	approval        *policy.Approval
	orderBaseURL    string
	orderFsOptions  []storage.Option
}

// New creates a fulfillment service.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.runtime.config = s.config
	s.runtime.approval = s.approval
	s.runtime.activities = activity.NewInvoker(s.activities, s.config.Activity)
	s.runtime.events = s.eventService
	s.runtime.approvals = s.approvalService
	s.runtime.coordinators = map[string]*coordinator.Process{}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.approval == nil {
		s.approval = s.config.Approval
	}
	if s.runtime.orderDAO == nil {
		s.runtime.orderDAO = order.New(afs.New(), s.orderBaseURL, s.orderFsOptions...)
	}
	if s.runtime.processDAO == nil {
		s.runtime.processDAO = pmemory.New()
	}
	if s.activities == nil {
		s.activities = local.New(local.WithAllocator(allocator.New(s.config.Stores...)))
	}
	if s.approvalService == nil {
		s.approvalService = amemory.New(amemory.WithSignaler(
			func(ctx context.Context, processID, signal, reason string) error {
				return s.runtime.Signal(ctx, processID, signal)
			}))
	}
}

// Runtime returns the runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Approvals returns the approval inbox service.
func (s *Service) Approvals() approval.Service {
	return s.approvalService
}
