// Package policy provides optional declarative rules applied on top of a
// running fulfillment engine - most notably the human-approval gate for
// high-value sub-orders.
package policy
