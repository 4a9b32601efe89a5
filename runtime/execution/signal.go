package execution

import (
	"fmt"
	"time"
)

// Signal names understood by a sub-order process.  Signals carry no payload
// beyond their name and are fire-and-forget from the sender's perspective.
const (
	SignalApprove  = "approve"
	SignalDeny     = "deny"
	SignalRollback = "rollback"
)

// Signal is the envelope delivered into a running process's signal queue.
type Signal struct {
	Name      string    `json:"name"`
	ProcessID string    `json:"processId"`
	EmittedAt time.Time `json:"emittedAt"`
}

// ValidateSignal returns an error for unknown signal names.
func ValidateSignal(name string) error {
	switch name {
	case SignalApprove, SignalDeny, SignalRollback:
		return nil
	}
	return fmt.Errorf("unknown signal: %q", name)
}
