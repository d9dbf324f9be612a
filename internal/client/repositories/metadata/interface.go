// Package metadata stores small key/value records of local client state
// (access token, cached user, cookies) in the SQLite metadata table.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store. Get returns (nil, nil) for a
// missing key; Delete and DeleteKeys are idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteKeys(ctx context.Context, keys ...string) (int64, error)
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
