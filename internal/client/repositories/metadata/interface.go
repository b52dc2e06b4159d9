// Package metadata is the local key/value table that holds the client's
// persisted settings and session state.
package metadata

import (
	"context"
)

// Repository reads and writes single values by key. A missing key reads as
// (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
