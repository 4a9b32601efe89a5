package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderValidate(t *testing.T) {
	testCases := []struct {
		description string
		order       *Order
		expectErr   bool
	}{
		{
			description: "order with items",
			order:       &Order{ID: "o-1", Items: []Item{{ProductName: "keyboard", UnitPrice: 2500, Quantity: 2}}},
		},
		{
			description: "empty order",
			order:       &Order{ID: "o-2"},
			expectErr:   true,
		},
		{
			description: "nil order",
			order:       nil,
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		err := testCase.order.Validate()
		if testCase.expectErr {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		assert.Nil(t, err, testCase.description)
	}
}

func TestOrderTotal(t *testing.T) {
	order := &Order{Items: []Item{
		{ProductName: "mouse", UnitPrice: 1999, Quantity: 2},
		{ProductName: "monitor", UnitPrice: 25000, Quantity: 1},
	}}
	assert.EqualValues(t, 2*1999+25000, order.Total())
}

func TestSubOrderClone(t *testing.T) {
	subOrder := &SubOrder{
		StoreID:   "001",
		StoreName: "Store One",
		Items:     []Item{{ProductName: "mouse", UnitPrice: 1999, Quantity: 1}},
		SubTotal:  1999,
		State:     StateReceived,
	}
	clone := subOrder.Clone()
	clone.State = StatePicking
	clone.Items[0].Quantity = 5
	assert.Equal(t, StateReceived, subOrder.State)
	assert.EqualValues(t, 1, subOrder.Items[0].Quantity)
}
