// Package metadata is the durable key–value store behind every piece of
// client state: server address, tokens, identity, caches and preferences.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Atomic runs fn against a repository bound to a single transaction.
	Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
