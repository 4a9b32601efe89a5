package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the coordinator
// as its sub-order processes advance.  The fields are signed and therefore
// can be either positive (increment) or negative (decrement).
type Delta struct {
	SubOrders  int
	Running    int
	Delivered  int
	RolledBack int
	Failed     int
}

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	// Identification - informative only, filled when the order run starts.
	OrderProcessID string
	OrderID        string
	StartedAt      time.Time

	SubOrders  int
	Running    int
	Delivered  int
	RolledBack int
	Failed     int
}

// Progress keeps aggregated sub-order counters for a single order run.  It is
// safe for concurrent use.
type Progress struct {
	mu       sync.Mutex
	current  Snapshot
	onChange func(Snapshot)
}

// Update applies the supplied delta.  If an onChange callback has been
// registered it is invoked with a copy of the updated counters outside the
// critical section so that slow consumers never block engine internals.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.current.SubOrders += d.SubOrders
	p.current.Running += d.Running
	p.current.Delivered += d.Delivered
	p.current.RolledBack += d.RolledBack
	p.current.Failed += d.Failed
	snapshot := p.current
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnChange registers a callback invoked after every Update.  Passing nil
// disables the callback; only one callback can be active.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both.
func WithNewTracker(ctx context.Context, orderProcessID, orderID string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		current: Snapshot{
			OrderProcessID: orderProcessID,
			OrderID:        orderID,
			StartedAt:      time.Now(),
		},
		onChange: onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Progress tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}
