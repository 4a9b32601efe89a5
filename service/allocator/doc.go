// Package allocator partitions an order into per-store sub-orders.  The
// allocation is a pure function: it performs no I/O, reads no clock and uses
// no randomness, so a replayed coordinator always obtains bit-identical
// groupings for the same order.
package allocator
