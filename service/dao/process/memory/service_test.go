package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/dao"
)

func TestServiceSaveLoad(t *testing.T) {
	service := New()
	ctx := context.Background()

	process := execution.NewProcess("o-1-001", "o-1", execution.KindSubOrder, model.StateReceived)
	process.SubOrder = &model.SubOrder{StoreID: "001", StoreName: "Store One", State: model.StateReceived}
	assert.Nil(t, service.Save(ctx, process))

	// saved copy is detached from the caller's instance
	process.SetState(model.StatePicking)
	loaded, err := service.Load(ctx, "o-1-001")
	assert.Nil(t, err)
	assert.Equal(t, model.StateReceived, loaded.State)

	_, err = service.Load(ctx, "missing")
	assert.True(t, dao.ErrNotFound == err)
}

func TestServiceListByState(t *testing.T) {
	service := New()
	ctx := context.Background()

	for i, state := range []string{model.StateReceived, model.StatePicking, model.StateRollback} {
		process := execution.NewProcess(string(rune('a'+i)), "o-1", execution.KindSubOrder, state)
		assert.Nil(t, service.Save(ctx, process))
	}
	rolledBack, err := service.List(ctx, dao.NewParameter("State", model.StateRollback))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(rolledBack))

	all, err := service.List(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(all))
}
