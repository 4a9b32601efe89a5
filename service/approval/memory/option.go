package memory

import (
	"github.com/viant/fulfillment/service/approval"
)

type Option func(*service)

// WithSignaler attaches a signaler so that decisions are delivered to the
// owning process as approve or deny signals. Without it decisions are only
// recorded and published on the event queue.
func WithSignaler(signaler approval.Signaler) Option {
	return func(s *service) { s.signaler = signaler }
}
