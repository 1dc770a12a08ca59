package port

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KVStore is the persistent key-value store used to survive the payment
// provider redirect and to keep anonymous carts. Values are opaque strings.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
