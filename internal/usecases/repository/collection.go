package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sand/bot-marketplace/backend/internal/storage"
)

var (
	// ErrDocumentNotFound is returned when no document has the requested id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrPersistenceUnavailable wraps failures of the underlying store.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// Storage keys of the collections.
const (
	KeyUsers        = "marketplace_users"
	KeyBots         = "marketplace_bots"
	KeyLogs         = "admin_system_logs"
	KeyStats        = "admin_app_stats"
	KeyTransactions = "wallet_transactions"
)

type document[T any] interface {
	*T
	GetID() string
	SetID(id string)
}

// Collection is a list of documents stored as a single value under one key.
// Every write is an atomic read-modify-write of the whole list.
type Collection[T any, PT document[T]] struct {
	logger *slog.Logger
	store  storage.Store
	key    string
	seed   func() []T
}

// NewCollection creates a collection stored under key. seed provides the
// documents returned while nothing has been stored yet and may be nil.
func NewCollection[T any, PT document[T]](logger *slog.Logger, store storage.Store, key string, seed func() []T) *Collection[T, PT] {
	return &Collection[T, PT]{
		logger: logger,
		store:  store,
		key:    key,
		seed:   seed,
	}
}

func (c *Collection[T, PT]) unavailable(op string, err error) error {
	c.logger.Error("Persistence failure", "collection", c.key, "op", op, "error", err)
	return fmt.Errorf("%w: %s %s: %w", ErrPersistenceUnavailable, op, c.key, err)
}

func (c *Collection[T, PT]) decode(raw []byte, exists bool) ([]T, error) {
	if !exists {
		if c.seed == nil {
			return []T{}, nil
		}
		return c.seed(), nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return items, nil
}

// Seed stores the seed documents if the collection does not exist yet.
// It reports whether anything was written.
func (c *Collection[T, PT]) Seed(ctx context.Context) (bool, error) {
	seeded := false
	err := c.store.Update(ctx, c.key, func(current []byte, exists bool) ([]byte, error) {
		seeded = !exists
		if exists {
			return current, nil
		}
		items, err := c.decode(nil, false)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return false, c.unavailable("seed", err)
	}
	if seeded {
		c.logger.Info("Collection seeded", "collection", c.key)
	}
	return seeded, nil
}

// List returns every document, most recently created first.
func (c *Collection[T, PT]) List(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	exists := true
	if errors.Is(err, storage.ErrNotFound) {
		exists = false
	} else if err != nil {
		return nil, c.unavailable("list", err)
	}

	items, err := c.decode(raw, exists)
	if err != nil {
		return nil, c.unavailable("list", err)
	}
	return items, nil
}

// Get returns the document with the given id.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		if PT(&items[i]).GetID() == id {
			return items[i], nil
		}
	}
	return zero, fmt.Errorf("%s/%s: %w", c.key, id, ErrDocumentNotFound)
}

// Find returns the first document matching match.
func (c *Collection[T, PT]) Find(ctx context.Context, match func(*T) bool) (T, error) {
	var zero T

	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		if match(&items[i]) {
			return items[i], nil
		}
	}
	return zero, fmt.Errorf("%s: %w", c.key, ErrDocumentNotFound)
}

// Mutate atomically replaces the whole list with the result of fn and returns it.
// Errors returned by fn are passed through unchanged.
func (c *Collection[T, PT]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) ([]T, error) {
	var (
		result []T
		opErr  error
	)

	err := c.store.Update(ctx, c.key, func(current []byte, exists bool) ([]byte, error) {
		opErr = nil

		items, err := c.decode(current, exists)
		if err != nil {
			return nil, err
		}

		next, err := fn(items)
		if err != nil {
			opErr = err
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		result = next
		return json.Marshal(next)
	})
	if opErr != nil && errors.Is(err, opErr) {
		return nil, opErr
	}
	if err != nil {
		return nil, c.unavailable("update", err)
	}
	return result, nil
}

// Create assigns a new id to item and prepends it to the collection.
func (c *Collection[T, PT]) Create(ctx context.Context, item T) (T, error) {
	PT(&item).SetID(uuid.NewString())

	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		return append([]T{item}, items...), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.logger.Debug("Document created", "collection", c.key, "id", PT(&item).GetID())
	return item, nil
}

// Update applies fn to the document with the given id and stores the result.
// The id cannot be changed by fn.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, fn func(item *T) error) (T, error) {
	var updated T

	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			doc := PT(&items[i])
			if doc.GetID() != id {
				continue
			}
			if err := fn(&items[i]); err != nil {
				return nil, err
			}
			doc.SetID(id)
			updated = items[i]
			return items, nil
		}
		return nil, fmt.Errorf("%s/%s: %w", c.key, id, ErrDocumentNotFound)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes the document with the given id.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if PT(&items[i]).GetID() == id {
				return append(items[:i:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%s/%s: %w", c.key, id, ErrDocumentNotFound)
	})
	if err != nil {
		return err
	}

	c.logger.Debug("Document deleted", "collection", c.key, "id", id)
	return nil
}
