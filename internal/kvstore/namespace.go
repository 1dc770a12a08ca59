package kvstore

import (
	"context"

	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
)

type namespaced struct {
	store  port.KVStore
	prefix string
}

// Namespace scopes every key of store under "<ns>:".
func Namespace(store port.KVStore, ns string) port.KVStore {
	return namespaced{store: store, prefix: ns + ":"}
}

func (n namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n namespaced) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, n.prefix+key)
	}
	return n.store.Delete(ctx, prefixed...)
}
