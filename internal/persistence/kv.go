package persistence

import (
	"context"
	"errors"
)

// KV is the durable key-value store the cart state is written to.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
