package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object is stored under a key.
var ErrNotFound = errors.New("storage: object not found")

// Store keeps generated documents addressed by a slash-separated key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}
