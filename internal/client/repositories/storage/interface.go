package storage

import (
	"context"
)

// Repository is a string key-value store.
// Get returns ("", nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}

// Store is a Repository that can group writes atomically.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
