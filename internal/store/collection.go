package store

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// Collection is an ordered list of records stored under one key.
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection binds a typed view to the named key.
func NewCollection[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the storage key.
func (c *Collection[T]) Name() string {
	return c.name
}

// Subscribe registers a render trigger for this collection.
func (c *Collection[T]) Subscribe(fn func()) func() {
	return c.store.Subscribe(c.name, fn)
}

// Load returns the stored sequence. It never fails: a missing value is empty
// and a malformed value is treated as empty.
func (c *Collection[T]) Load(ctx context.Context) []T {
	raw, ok := c.store.get(ctx, c.name)
	if !ok {
		return []T{}
	}
	return c.decode(raw)
}

func (c *Collection[T]) decode(raw string) []T {
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.store.logger.Debug().
			Err(domain.NewCorruptionError(c.name, err)).
			Msg("discarding malformed collection")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Append adds entry at the end and returns the updated sequence.
func (c *Collection[T]) Append(ctx context.Context, entry T) ([]T, error) {
	return c.mutate(ctx, func(items []T) ([]T, bool) {
		return append(items, entry), true
	})
}

// RemoveLast drops the last entry matching pred and returns the updated
// sequence. Nothing is written when no entry matches.
func (c *Collection[T]) RemoveLast(ctx context.Context, pred func(T) bool) ([]T, error) {
	return c.mutate(ctx, func(items []T) ([]T, bool) {
		for i := len(items) - 1; i >= 0; i-- {
			if pred(items[i]) {
				return append(items[:i:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}

// RemoveAt drops the entry at index. An index outside the sequence writes
// nothing and reports removed=false.
func (c *Collection[T]) RemoveAt(ctx context.Context, index int) (items []T, removed bool, err error) {
	items, err = c.mutate(ctx, func(items []T) ([]T, bool) {
		if index < 0 || index >= len(items) {
			return items, false
		}
		removed = true
		return append(items[:index:index], items[index+1:]...), true
	})
	return items, removed, err
}

// Replace overwrites the whole sequence.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	_, err := c.mutate(ctx, func([]T) ([]T, bool) {
		return items, true
	})
	return err
}

func (c *Collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool)) ([]T, error) {
	c.store.mu.Lock()
	raw, ok, err := c.store.read(ctx, c.name)
	if err != nil {
		c.store.mu.Unlock()
		return nil, err
	}
	current := []T{}
	if ok {
		current = c.decode(raw)
	}
	updated, changed := fn(current)
	if !changed {
		c.store.mu.Unlock()
		return updated, nil
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		c.store.mu.Unlock()
		return current, fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.store.put(ctx, c.name, string(payload)); err != nil {
		c.store.mu.Unlock()
		return current, err
	}
	c.store.mu.Unlock()

	c.store.notify(c.name)
	return updated, nil
}
