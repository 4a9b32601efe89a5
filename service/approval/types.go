package approval

import (
	"time"
)

// Event envelope published on the approval queue.
type Event struct {
	Topic string      // see topic constants below
	Data  interface{} // *Request | *Decision
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicDecisionCreated = "decision.created"
)

// Request represents a pending approval for a gated sub-order.
type Request struct {
	ID        string     `json:"id"`        // sub-order process id, primary key
	ProcessID string     `json:"processId"` // parent order process id
	StoreID   string     `json:"storeID"`
	SubTotal  int64      `json:"subTotal"`            // cents
	CreatedAt time.Time  `json:"createdAt"`           // RFC-3339 timestamp
	ExpiresAt *time.Time `json:"expiresAt,omitempty"` // approval deadline
}

// Decision represents an approval decision.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
