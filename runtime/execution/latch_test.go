package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatchSetOnce(t *testing.T) {
	latch := NewLatch()
	assert.False(t, latch.IsSet())

	latch.Set("suborder failed")
	latch.Set("second reason")

	assert.True(t, latch.IsSet())
	assert.Equal(t, "suborder failed", latch.Reason())

	select {
	case <-latch.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestLogLIFO(t *testing.T) {
	log := NewLog()
	log.Push("PICKING")
	log.Push("DISPATCHED")
	assert.Equal(t, 2, log.Len())
	assert.Equal(t, []string{"PICKING", "DISPATCHED"}, log.Entries())

	state, ok := log.Pop()
	assert.True(t, ok)
	assert.Equal(t, "DISPATCHED", state)
	state, ok = log.Pop()
	assert.True(t, ok)
	assert.Equal(t, "PICKING", state)

	// never pops more than was pushed
	_, ok = log.Pop()
	assert.False(t, ok)
}

func TestLogDiscard(t *testing.T) {
	log := NewLog()
	log.Push("PICKING")
	log.Discard()
	assert.Equal(t, 0, log.Len())
}

func TestValidateSignal(t *testing.T) {
	assert.Nil(t, ValidateSignal(SignalApprove))
	assert.Nil(t, ValidateSignal(SignalDeny))
	assert.Nil(t, ValidateSignal(SignalRollback))
	assert.NotNil(t, ValidateSignal("pause"))
}
