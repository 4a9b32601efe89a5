// Package dao defines the storage contract for engine entities (process
// snapshots, approval requests and decisions).  Implementations must be safe
// for concurrent use - queries are served from locally saved copies and must
// never block on in-flight processes.
package dao

import (
	"context"
)

// Service abstracts entity storage keyed by a comparable key.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
