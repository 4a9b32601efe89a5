package execution

import (
	"context"
	"time"
)

// Order coordinator status constants.
const (
	StatusReceived          = "RECEIVED"
	StatusAllocating        = "ALLOCATING"
	StatusStartingSuborders = "STARTING_SUBORDERS"
	StatusSubordersStarted  = "SUBORDERS_STARTED"
	StatusCompleted         = "COMPLETED"
	StatusRollback          = "ROLLBACK"
)

// Result resolves a process completion future.  A child failure travels as
// data in Err - it never faults the parent process.
type Result struct {
	ProcessID string
	State     string
	Reason    string
	Err       error
	TimeTaken time.Duration
}

// Wait blocks until the process completes or the timeout elapses.
type Wait func(ctx context.Context, timeout time.Duration) (*Result, error)
