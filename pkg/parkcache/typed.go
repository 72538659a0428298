package parkcache

import (
	"context"
)

// Typed is a typed view over a Cache. It removes the dest-pointer plumbing
// for callers that always cache one value type under a key family.
type Typed[T any] struct {
	cache Cache
}

// NewTyped creates a typed view over the given cache.
func NewTyped[T any](c Cache) *Typed[T] {
	return &Typed[T]{cache: c}
}

// Get retrieves the value for key without any fetch fallback.
func (t *Typed[T]) Get(ctx context.Context, key string, opts ...Option) (T, error) {
	var value T
	err := t.cache.Get(ctx, key, &value, opts...)
	return value, err
}

// GetOrFetch retrieves the value for key, invoking fetch on a full miss.
func (t *Typed[T]) GetOrFetch(ctx context.Context, key string, fetch func() (T, error), opts ...Option) (T, error) {
	var value T
	err := t.cache.GetOrFetch(ctx, key, &value, func() (any, error) {
		fetched, err := fetch()
		if err != nil {
			return nil, err
		}
		return fetched, nil
	}, opts...)
	return value, err
}

// Set stores the value under key.
func (t *Typed[T]) Set(ctx context.Context, key string, value T, opts ...Option) error {
	return t.cache.Set(ctx, key, value, opts...)
}

// Invalidate removes key from both tiers.
func (t *Typed[T]) Invalidate(ctx context.Context, key string) error {
	return t.cache.Invalidate(ctx, key)
}
