package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by MemoryStore after Close.
var ErrClosed = errors.New("storage closed")

// Store is the key/value surface the client packages depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update loads the current value of key (nil when absent), passes it to fn
	// and stores what fn returns. A nil result deletes the key. An error from
	// fn aborts without writing.
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error

	Close() error
}
