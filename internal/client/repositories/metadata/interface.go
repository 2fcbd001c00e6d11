// Package metadata is a small key/value table in the local SQLite database.
// The secure token store keeps its KDF parameters and sealed secrets here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value for key. found is false when no row exists.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
