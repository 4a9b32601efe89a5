// Package tracing integrates observability back-ends with the fulfillment
// engine to provide distributed tracing for coordinator runs, sub-order
// processes and activity calls.  All instrumentation is kept in a separate
// package so that applications which do not require tracing can exclude it
// from their build.
package tracing
