package order

import (
	"context"
	"embed"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
)

//go:embed testdata/*
var embedFS embed.FS

func TestServiceLoad(t *testing.T) {
	service := New(afs.New(), "embed:///testdata", &embedFS)
	ctx := context.Background()

	anOrder, err := service.Load(ctx, "order.json")
	assert.Nil(t, err)
	assert.Equal(t, "o-1001", anOrder.ID)
	assert.Equal(t, 4, len(anOrder.Items))
	assert.EqualValues(t, 4500, anOrder.Items[0].UnitPrice)
}

func TestServiceLoadOrderDetailsEnvelope(t *testing.T) {
	service := New(afs.New(), "embed:///testdata", &embedFS)
	ctx := context.Background()

	anOrder, err := service.Load(ctx, "order_details.json")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(anOrder.Items))
}

func TestServiceLoadExpandsEnv(t *testing.T) {
	os.Setenv("FULFILLMENT_ORDER_ID", "o-env-7")
	defer os.Unsetenv("FULFILLMENT_ORDER_ID")

	service := New(afs.New(), "embed:///testdata", &embedFS)
	anOrder, err := service.Load(context.Background(), "order_env.json")
	assert.Nil(t, err)
	assert.Equal(t, "o-env-7", anOrder.ID)
}

func TestServiceLoadMissing(t *testing.T) {
	service := New(afs.New(), "embed:///testdata", &embedFS)
	_, err := service.Load(context.Background(), "absent.json")
	assert.NotNil(t, err)
}
