// Package storage provides the key-value substrate the document collections are
// persisted in.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// UpdateFunc computes the next value of a key from its current value.
// exists is false when the key holds no value yet. Backends with optimistic
// concurrency may call it more than once, so it must not have side effects.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is a key-value store with an atomic read-modify-write primitive.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update atomically replaces the value of key with the result of fn.
	// An error returned by fn aborts the update and is returned unchanged.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// Backend names accepted by the storage configuration.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const maxConflictRetries = 64
