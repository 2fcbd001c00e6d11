// Package securestore persists small secrets, such as the session bearer
// token, in the local SQLite database. Values are sealed with AES-GCM under
// a key derived from a device passphrase.
package securestore

import (
	"context"
	"errors"
)

// TokenKey is the key under which the session token is kept.
const TokenKey = "token"

var ErrWrongPassphrase = errors.New("wrong passphrase for secure store")

// TokenStore is a string key/value store for secrets.
type TokenStore interface {
	// Get returns the stored value. found is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete succeeds when the key does not exist.
	Delete(ctx context.Context, key string) error
}
