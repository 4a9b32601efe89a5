package execution

import "sync"

// Latch is a single-writer, multiple-reader flag that is set exactly once and
// never unset.  The coordinator uses it as its cancellation trigger and the
// sub-order processes use one per signal kind, which makes duplicate signal
// delivery naturally idempotent.
type Latch struct {
	mu     sync.Mutex
	done   chan struct{}
	set    bool
	reason string
}

// NewLatch creates an unset latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Set trips the latch with the supplied reason.  Subsequent calls are no-ops,
// the first reason wins.
func (l *Latch) Set(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		return
	}
	l.set = true
	l.reason = reason
	close(l.done)
}

// Done returns a channel closed once the latch has been set.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// IsSet reports whether the latch has been tripped.
func (l *Latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Reason returns the reason recorded by the first Set call.
func (l *Latch) Reason() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reason
}
