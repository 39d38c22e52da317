package dao

import (
	"context"
)

// Service is a generic keyed entity storage. Implementations store and
// return copies, so callers may mutate what they pass in or get back.
type Service[K comparable, T any] interface {
	// Save upserts t
	Save(ctx context.Context, t *T) error

	// Insert stores t or fails with ErrDuplicate
	Insert(ctx context.Context, t *T) error

	// Update atomically replaces the entity under key with fn's result;
	// it fails with ErrNotFound when key is absent or with fn's error
	Update(ctx context.Context, key K, fn func(current *T) (*T, error)) error

	// Load returns the entity or ErrNotFound
	Load(ctx context.Context, key K) (*T, error)

	// Delete removes the entity or fails with ErrNotFound
	Delete(ctx context.Context, key K) error

	// List returns entities matching parameters
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
