package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

// Store holds users, posts and comments in memory. Returned entities are
// copies; callers never alias stored state.
type Store struct {
	mu sync.RWMutex

	users    map[uuid.UUID]*domain.User
	posts    map[uuid.UUID]*domain.Post
	comments map[uuid.UUID]*domain.Comment

	// Unique indexes.
	userEmails map[string]uuid.UUID
	userKeys   map[string]uuid.UUID
	postKeys   map[string]uuid.UUID
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*domain.User),
		posts:      make(map[uuid.UUID]*domain.Post),
		comments:   make(map[uuid.UUID]*domain.Comment),
		userEmails: make(map[string]uuid.UUID),
		userKeys:   make(map[string]uuid.UUID),
		postKeys:   make(map[string]uuid.UUID),
	}
}

// Users returns the user store view.
func (s *Store) Users() store.UserStore { return &UserStore{s: s} }

// Posts returns the post store view.
func (s *Store) Posts() store.PostStore { return &PostStore{s: s} }

// Comments returns the comment store view.
func (s *Store) Comments() store.CommentStore { return &CommentStore{s: s} }

// Compile-time interface checks
var (
	_ store.UserStore    = (*UserStore)(nil)
	_ store.PostStore    = (*PostStore)(nil)
	_ store.CommentStore = (*CommentStore)(nil)
)

func values[T any](m map[uuid.UUID]*T) []*T {
	return slices.Collect(maps.Values(m))
}

// live reports a cancelled context before touching state.
func live(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}
