package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/approval"
)

func TestServiceDecide(t *testing.T) {
	ctx := context.Background()
	var signalled []string
	service := New(WithSignaler(func(ctx context.Context, processID, signal, reason string) error {
		signalled = append(signalled, processID+":"+signal)
		return nil
	}))

	err := service.RequestApproval(ctx, &approval.Request{ID: "o-1-001", ProcessID: "o-1", StoreID: "001", SubTotal: 60000})
	assert.Nil(t, err)
	// re-submission is idempotent
	assert.Nil(t, service.RequestApproval(ctx, &approval.Request{ID: "o-1-001", ProcessID: "o-1", StoreID: "001", SubTotal: 60000}))

	pending, err := service.ListPending(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(pending))

	decision, err := service.Decide(ctx, "o-1-001", true, "within budget")
	assert.Nil(t, err)
	assert.True(t, decision.Approved)
	assert.Equal(t, []string{"o-1-001:" + execution.SignalApprove}, signalled)

	pending, err = service.ListPending(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(pending))

	_, err = service.Decide(ctx, "o-1-001", false, "changed mind")
	assert.NotNil(t, err)
}

func TestServiceDecideUnknown(t *testing.T) {
	service := New()
	_, err := service.Decide(context.Background(), "missing", true, "")
	assert.NotNil(t, err)
}

func TestServiceDenySignal(t *testing.T) {
	ctx := context.Background()
	var lastSignal string
	service := New(WithSignaler(func(ctx context.Context, processID, signal, reason string) error {
		lastSignal = signal
		return nil
	}))
	assert.Nil(t, service.RequestApproval(ctx, &approval.Request{ID: "o-2-002", ProcessID: "o-2", SubTotal: 90000}))
	decision, err := service.Decide(ctx, "o-2-002", false, "over budget")
	assert.Nil(t, err)
	assert.False(t, decision.Approved)
	assert.Equal(t, execution.SignalDeny, lastSignal)
}
