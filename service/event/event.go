// Package event publishes structured observability events in place of the
// per-call console narration the engine would otherwise produce.  Listening is
// entirely optional: publishes are non-blocking best effort and a process
// never fails because nobody consumes its events.
package event

import (
	"time"

	"github.com/viant/fulfillment/internal/clock"
)

// Event types emitted by the engine.
const (
	TypeStatusChanged  = "process.statusChanged"
	TypeSignalReceived = "process.signalReceived"
	TypeSignalSent     = "process.signalSent"
	TypeSignalIgnored  = "process.signalIgnored"
	TypeCompensation   = "process.compensation"
	TypeActivity       = "activity.completed"
	TypeItemPicked     = "suborder.itemPicked"
)

// Context identifies the process and operation an event originated from.
type Context struct {
	ProcessID   string `json:"processID"`
	Kind        string `json:"kind,omitempty"`
	EventType   string `json:"eventType"`
	StoreID     string `json:"storeID,omitempty"`
	Reason      string `json:"reason,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event carries a typed payload together with its origin context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event for the supplied context and payload.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
