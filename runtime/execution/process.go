package execution

import (
	"time"

	"github.com/viant/fulfillment/internal/clock"
	"github.com/viant/fulfillment/model"
)

// Process kinds.
const (
	KindOrder    = "order"
	KindSubOrder = "suborder"
)

// Process is the queryable record of one logical process.  The owning
// goroutine is its only writer; every other component observes copies saved
// into a process DAO, so reads never block a running process.
type Process struct {
	ID         string            `json:"id"`
	ParentID   string            `json:"parentId,omitempty"`
	Kind       string            `json:"kind"`
	State      string            `json:"state"`
	Reason     string            `json:"reason,omitempty"`
	Order      *model.Order      `json:"order,omitempty"`
	SubOrder   *model.SubOrder   `json:"subOrder,omitempty"`
	SubOrders  map[string]string `json:"subOrders,omitempty"` // suborder process id -> last known state
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	FinishedAt *time.Time        `json:"finishedAt,omitempty"`
}

// NewProcess creates a process record in the supplied initial state.
func NewProcess(id, parentID, kind, state string) *Process {
	now := clock.Now()
	return &Process{
		ID:        id,
		ParentID:  parentID,
		Kind:      kind,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetState updates the state and bookkeeping timestamps.
func (p *Process) SetState(state string) {
	p.State = state
	p.UpdatedAt = clock.Now()
	switch {
	case p.Kind == KindSubOrder && model.IsTerminal(state):
		now := clock.Now()
		p.FinishedAt = &now
	case p.Kind == KindOrder && (state == StatusCompleted || state == StatusRollback):
		now := clock.Now()
		p.FinishedAt = &now
	}
}

// Clone returns a deep copy safe to hand out to queries.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	ret := *p
	if p.Order != nil {
		order := *p.Order
		order.Items = append([]model.Item(nil), p.Order.Items...)
		ret.Order = &order
	}
	ret.SubOrder = p.SubOrder.Clone()
	if p.SubOrders != nil {
		ret.SubOrders = make(map[string]string, len(p.SubOrders))
		for k, v := range p.SubOrders {
			ret.SubOrders[k] = v
		}
	}
	if p.FinishedAt != nil {
		finished := *p.FinishedAt
		ret.FinishedAt = &finished
	}
	return &ret
}
