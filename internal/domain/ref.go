package domain

import (
	"context"

	"github.com/google/uuid"
)

// Fetcher loads an entity by identifier.
type Fetcher[T any] func(ctx context.Context, id uuid.UUID) (*T, error)

// Ref is a weak reference to another entity. It always carries the target's
// identifier and optionally an already materialized value. Holding a Ref never
// implies ownership of the target.
type Ref[T any] struct {
	ID    uuid.UUID
	Value *T
}

// RefTo returns an unresolved reference to id.
func RefTo[T any](id uuid.UUID) Ref[T] {
	return Ref[T]{ID: id}
}

// Embedded returns a reference carrying its resolved value.
func Embedded[T any](id uuid.UUID, v *T) Ref[T] {
	return Ref[T]{ID: id, Value: v}
}

// Resolved reports whether the reference carries a value.
func (r Ref[T]) Resolved() bool {
	return r.Value != nil
}

// Resolve returns the embedded value when present, otherwise it fetches the
// target by ID. The receiver is not modified.
func (r Ref[T]) Resolve(ctx context.Context, fetch Fetcher[T]) (*T, error) {
	if r.Value != nil {
		return r.Value, nil
	}
	if r.ID == uuid.Nil {
		return nil, ErrUnresolvedRef
	}
	return fetch(ctx, r.ID)
}
