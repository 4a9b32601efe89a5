// Package model contains the in-memory representation of orders, sub-orders
// and their lifecycle states used by the fulfillment engine.
//
// An order is typically loaded from a JSON document into the structures
// defined here and stays immutable once the coordinator accepts it; sub-orders
// are derived from it by the allocator and owned by their sub-order process.
package model
