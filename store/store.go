package store

import (
	"context"
	"errors"
)

// Store is the persistent key-value port used for the session token, the
// serialized user and the cart snapshot.
// Consumers define this interface, not the backing implementation.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
