package policy

import (
	"context"
	"time"
)

// Approval modes recognised by the engine.
const (
	ModeAsk  = "ask"  // gate high-value sub-orders behind an approval signal (default)
	ModeAuto = "auto" // approve everything automatically
	ModeDeny = "deny" // deny every gated sub-order
)

// Default approval settings.
const (
	DefaultThreshold = int64(50000) // cents; $500
	DefaultTimeout   = 15 * time.Second
)

// Approval represents the approval settings for one order run.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - Threshold is the sub-order subtotal (in cents) at or above which the
//     approval gate is entered.
//   - Timeout bounds how long a gated sub-order waits for a decision before
//     it compensates.
//
// A nil *Approval means the defaults (ask, $500, 15s) and is the
// zero-cost default.
type Approval struct {
	Mode      string        `json:"mode,omitempty" yaml:"mode,omitempty"`
	Threshold int64         `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// EffectiveMode returns the mode with defaults applied.
func (p *Approval) EffectiveMode() string {
	if p == nil || p.Mode == "" {
		return ModeAsk
	}
	return p.Mode
}

// EffectiveThreshold returns the threshold with defaults applied.
func (p *Approval) EffectiveThreshold() int64 {
	if p == nil || p.Threshold <= 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

// EffectiveTimeout returns the approval timeout with defaults applied.
func (p *Approval) EffectiveTimeout() time.Duration {
	if p == nil || p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// RequiresApproval reports whether a sub-order with the given subtotal has to
// pass the approval gate.
func (p *Approval) RequiresApproval(subTotal int64) bool {
	if p.EffectiveMode() == ModeAuto {
		return false
	}
	return subTotal >= p.EffectiveThreshold()
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithApproval embeds the approval policy in ctx.
func WithApproval(ctx context.Context, p *Approval) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the approval policy, nil when absent.
func FromContext(ctx context.Context) *Approval {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Approval); ok {
		return v
	}
	return nil
}
