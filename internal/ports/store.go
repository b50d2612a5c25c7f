package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KeyValueStore when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists opaque values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
