package model

import "encoding/json"

// Sub-order state constants. The forward path is linear; ROLLBACK is the
// terminal compensation state reachable from any state before DISPATCHED.
const (
	StateReceived         = "RECEIVED"
	StateAwaitingApproval = "AWAITING_APPROVAL"
	StatePicking          = "PICKING"
	StateDispatched       = "DISPATCHED"
	StateDelivered        = "DELIVERED"
	StateRollback         = "ROLLBACK"
	StateFailed           = "FAILED"
)

// SubOrder represents the portion of an order allocated to one store. It is
// owned exclusively by its sub-order process; the coordinator only keeps
// last-known snapshots reported back by children.
type SubOrder struct {
	StoreID   string `json:"storeID"`
	StoreName string `json:"storeName"`
	Items     []Item `json:"items"`
	SubTotal  int64  `json:"subTotal"`
	State     string `json:"state,omitempty"`
}

// Clone returns a deep copy so that snapshots never alias process-owned state.
func (s *SubOrder) Clone() *SubOrder {
	if s == nil {
		return nil
	}
	ret := *s
	ret.Items = append([]Item(nil), s.Items...)
	return &ret
}

// JSONString returns the indented JSON representation used by snapshot
// queries.
func (s *SubOrder) JSONString() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// IsTerminal reports whether the state closes a sub-order process.
func IsTerminal(state string) bool {
	switch state {
	case StateDelivered, StateRollback, StateFailed:
		return true
	}
	return false
}
