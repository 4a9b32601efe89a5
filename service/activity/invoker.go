package activity

import (
	"context"
	"time"

	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/tracing"
)

// Options control how the invoker executes activity calls.
type Options struct {
	// StartToCloseTimeout bounds a single activity attempt.
	StartToCloseTimeout time.Duration `json:"startToCloseTimeout" yaml:"startToCloseTimeout"`

	// MaxRetries is the transparent retry budget for transient failures.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration `json:"retryDelay" yaml:"retryDelay"`
}

// DefaultOptions returns the default activity policy.
func DefaultOptions() Options {
	return Options{
		StartToCloseTimeout: 5 * time.Minute,
		MaxRetries:          3,
		RetryDelay:          100 * time.Millisecond,
	}
}

// Invoker decorates a gateway implementation with the hosting-engine retry
// semantics: bounded attempts, fixed delay, immediate stop on TerminalError.
// It implements Service so that callers stay unaware of the wrapping.
type Invoker struct {
	service Service
	options Options
}

// NewInvoker creates an invoker around the supplied gateway.
func NewInvoker(service Service, options Options) *Invoker {
	if options.StartToCloseTimeout <= 0 {
		options.StartToCloseTimeout = DefaultOptions().StartToCloseTimeout
	}
	if options.MaxRetries < 0 {
		options.MaxRetries = 0
	}
	return &Invoker{service: service, options: options}
}

func (i *Invoker) AllocateToStores(ctx context.Context, order *model.Order) ([]*model.SubOrder, error) {
	var ret []*model.SubOrder
	err := i.invoke(ctx, "activity.allocateToStores", func(ctx context.Context) error {
		var err error
		ret, err = i.service.AllocateToStores(ctx, order)
		return err
	})
	return ret, err
}

func (i *Invoker) PickItems(ctx context.Context, subOrder *model.SubOrder, processID string) (string, error) {
	var ret string
	err := i.invoke(ctx, "activity.pickItems", func(ctx context.Context) error {
		var err error
		ret, err = i.service.PickItems(ctx, subOrder, processID)
		return err
	})
	return ret, err
}

func (i *Invoker) Dispatch(ctx context.Context) error {
	return i.invoke(ctx, "activity.dispatch", func(ctx context.Context) error {
		return i.service.Dispatch(ctx)
	})
}

func (i *Invoker) ConfirmDelivered(ctx context.Context) error {
	return i.invoke(ctx, "activity.confirmDelivered", func(ctx context.Context) error {
		return i.service.ConfirmDelivered(ctx)
	})
}

func (i *Invoker) invoke(ctx context.Context, name string, call func(ctx context.Context) error) error {
	spanCtx, span := tracing.StartSpan(ctx, name, "CLIENT")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(spanCtx, i.options.StartToCloseTimeout)
		err = call(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if IsTerminal(err) || ctx.Err() != nil || attempt >= i.options.MaxRetries {
			return err
		}
		select {
		case <-time.After(i.options.RetryDelay):
		case <-ctx.Done():
			err = ctx.Err()
			return err
		}
	}
}

var _ Service = (*Invoker)(nil)
