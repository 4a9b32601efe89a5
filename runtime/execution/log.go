package execution

import "sync"

// Log records completed forward transitions of one sub-order process so that
// compensation can unwind them in LIFO order.  The log length always equals
// the number of forward transitions taken; Pop never yields more entries than
// were pushed.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// NewLog creates an empty compensation log.
func NewLog() *Log {
	return &Log{}
}

// Push appends a completed state name.
func (l *Log) Push(state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, state)
}

// Pop removes and returns the most recent entry.
func (l *Log) Pop() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", false
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last, true
}

// Len returns the number of recorded transitions.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded transitions, oldest first.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Discard drops all entries; called on terminal success where no rollback is
// reachable anymore.
func (l *Log) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
