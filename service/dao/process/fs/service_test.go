package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fulfillment/model"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/dao"
)

func TestServiceRoundTrip(t *testing.T) {
	service := New("mem://localhost/fulfillment")
	ctx := context.Background()

	process := execution.NewProcess("o-9-002", "o-9", execution.KindSubOrder, model.StateRollback)
	process.Reason = "SubOrder denied"
	process.SubOrder = &model.SubOrder{StoreID: "002", StoreName: "Store Two", State: model.StateRollback}

	assert.Nil(t, service.Save(ctx, process))
	loaded, err := service.Load(ctx, "o-9-002")
	assert.Nil(t, err)
	assert.Equal(t, model.StateRollback, loaded.State)
	assert.Equal(t, "SubOrder denied", loaded.Reason)

	listed, err := service.List(ctx, dao.NewParameter("State", model.StateRollback))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(listed))

	assert.Nil(t, service.Delete(ctx, "o-9-002"))
	_, err = service.Load(ctx, "o-9-002")
	assert.Equal(t, dao.ErrNotFound, err)
}
