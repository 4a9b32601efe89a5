package model

import (
	"encoding/json"
	"fmt"
)

// Item represents a single order line. UnitPrice is expressed in cents so that
// subtotal arithmetic stays exact across repeated executions.
type Item struct {
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int64  `json:"quantity"`
}

// Total returns the item line total in cents.
func (i *Item) Total() int64 {
	return i.UnitPrice * i.Quantity
}

// Order represents a customer order. It is immutable once received by the
// order coordinator - components derive from it but never mutate it.
type Order struct {
	ID    string `json:"id,omitempty"`
	Items []Item `json:"items"`
}

// Validate returns an error when the order cannot be fulfilled.
func (o *Order) Validate() error {
	if o == nil {
		return fmt.Errorf("order was nil")
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order %v has no items", o.ID)
	}
	return nil
}

// Total returns the order total in cents.
func (o *Order) Total() int64 {
	var total int64
	for i := range o.Items {
		total += o.Items[i].Total()
	}
	return total
}

// JSONString returns the indented JSON representation used by snapshot
// queries.
func (o *Order) JSONString() string {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
