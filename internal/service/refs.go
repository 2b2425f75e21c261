package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
)

// memoFetch loads each identifier at most once for the lifetime of the
// returned fetcher. It is not safe for concurrent use.
func memoFetch[T any](fetch domain.Fetcher[T]) domain.Fetcher[T] {
	seen := make(map[uuid.UUID]*T)
	return func(ctx context.Context, id uuid.UUID) (*T, error) {
		if v, ok := seen[id]; ok {
			return v, nil
		}
		v, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		seen[id] = v
		return v, nil
	}
}

// resolveRefs embeds the target of the reference picked by ref into each item.
// A reference without an identifier is left unresolved. A missing target is
// returned as an error.
func resolveRefs[E, T any](
	ctx context.Context,
	items []*E,
	ref func(*E) *domain.Ref[T],
	fetch domain.Fetcher[T],
) error {
	fetch = memoFetch(fetch)
	for _, item := range items {
		r := ref(item)
		v, err := r.Resolve(ctx, fetch)
		switch {
		case err == nil:
			*r = domain.Embedded(r.ID, v)
		case errors.Is(err, domain.ErrUnresolvedRef):
		default:
			return err
		}
	}
	return nil
}
