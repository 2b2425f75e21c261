package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

// ErrNotConfigured is returned by a mock method with neither a function
// field nor a Base store.
var ErrNotConfigured = errors.New("mock method not configured")

// Calls counts invocations per method name.
type Calls struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *Calls) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[method]++
}

// Count returns how often method was called.
func (c *Calls) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	Base  store.UserStore
	Calls Calls

	CountFn               func(ctx context.Context, filter store.Filter) (int, error)
	FindFn                func(ctx context.Context, q store.Query) ([]*domain.User, error)
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn          func(ctx context.Context, email string) (*domain.User, error)
	GetByIdempotencyKeyFn func(ctx context.Context, key string) (*domain.User, error)
	CreateFn              func(ctx context.Context, user *domain.User) error
	UpdateFn              func(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error)
	DeleteFn              func(ctx context.Context, id uuid.UUID) error
}

// Ensure MockUserStore implements store.UserStore interface
var _ store.UserStore = (*MockUserStore)(nil)

// Count implements the store.UserStore interface
func (m *MockUserStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	m.Calls.record("Count")
	switch {
	case m.CountFn != nil:
		return m.CountFn(ctx, filter)
	case m.Base != nil:
		return m.Base.Count(ctx, filter)
	}
	return 0, ErrNotConfigured
}

// Find implements the store.UserStore interface
func (m *MockUserStore) Find(ctx context.Context, q store.Query) ([]*domain.User, error) {
	m.Calls.record("Find")
	switch {
	case m.FindFn != nil:
		return m.FindFn(ctx, q)
	case m.Base != nil:
		return m.Base.Find(ctx, q)
	}
	return nil, ErrNotConfigured
}

// GetByID implements the store.UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.Calls.record("GetByID")
	switch {
	case m.GetByIDFn != nil:
		return m.GetByIDFn(ctx, id)
	case m.Base != nil:
		return m.Base.GetByID(ctx, id)
	}
	return nil, ErrNotConfigured
}

// GetByEmail implements the store.UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.Calls.record("GetByEmail")
	switch {
	case m.GetByEmailFn != nil:
		return m.GetByEmailFn(ctx, email)
	case m.Base != nil:
		return m.Base.GetByEmail(ctx, email)
	}
	return nil, ErrNotConfigured
}

// GetByIdempotencyKey implements the store.UserStore interface
func (m *MockUserStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.User, error) {
	m.Calls.record("GetByIdempotencyKey")
	switch {
	case m.GetByIdempotencyKeyFn != nil:
		return m.GetByIdempotencyKeyFn(ctx, key)
	case m.Base != nil:
		return m.Base.GetByIdempotencyKey(ctx, key)
	}
	return nil, ErrNotConfigured
}

// Create implements the store.UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.Calls.record("Create")
	switch {
	case m.CreateFn != nil:
		return m.CreateFn(ctx, user)
	case m.Base != nil:
		return m.Base.Create(ctx, user)
	}
	return ErrNotConfigured
}

// Update implements the store.UserStore interface
func (m *MockUserStore) Update(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error) {
	m.Calls.record("Update")
	switch {
	case m.UpdateFn != nil:
		return m.UpdateFn(ctx, id, patch)
	case m.Base != nil:
		return m.Base.Update(ctx, id, patch)
	}
	return nil, ErrNotConfigured
}

// Delete implements the store.UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.record("Delete")
	switch {
	case m.DeleteFn != nil:
		return m.DeleteFn(ctx, id)
	case m.Base != nil:
		return m.Base.Delete(ctx, id)
	}
	return ErrNotConfigured
}

// MockPostStore implements store.PostStore for testing
type MockPostStore struct {
	Base  store.PostStore
	Calls Calls

	CountFn               func(ctx context.Context, filter store.Filter) (int, error)
	FindFn                func(ctx context.Context, q store.Query) ([]*domain.Post, error)
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetByIdempotencyKeyFn func(ctx context.Context, key string) (*domain.Post, error)
	CreateFn              func(ctx context.Context, post *domain.Post) error
	UpdateFn              func(ctx context.Context, id uuid.UUID, patch store.PostPatch) (*domain.Post, error)
	DeleteFn              func(ctx context.Context, id uuid.UUID) error
	DistinctTagsFn        func(ctx context.Context) ([]string, error)
}

// Ensure MockPostStore implements store.PostStore interface
var _ store.PostStore = (*MockPostStore)(nil)

// Count implements the store.PostStore interface
func (m *MockPostStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	m.Calls.record("Count")
	switch {
	case m.CountFn != nil:
		return m.CountFn(ctx, filter)
	case m.Base != nil:
		return m.Base.Count(ctx, filter)
	}
	return 0, ErrNotConfigured
}

// Find implements the store.PostStore interface
func (m *MockPostStore) Find(ctx context.Context, q store.Query) ([]*domain.Post, error) {
	m.Calls.record("Find")
	switch {
	case m.FindFn != nil:
		return m.FindFn(ctx, q)
	case m.Base != nil:
		return m.Base.Find(ctx, q)
	}
	return nil, ErrNotConfigured
}

// GetByID implements the store.PostStore interface
func (m *MockPostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	m.Calls.record("GetByID")
	switch {
	case m.GetByIDFn != nil:
		return m.GetByIDFn(ctx, id)
	case m.Base != nil:
		return m.Base.GetByID(ctx, id)
	}
	return nil, ErrNotConfigured
}

// GetByIdempotencyKey implements the store.PostStore interface
func (m *MockPostStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Post, error) {
	m.Calls.record("GetByIdempotencyKey")
	switch {
	case m.GetByIdempotencyKeyFn != nil:
		return m.GetByIdempotencyKeyFn(ctx, key)
	case m.Base != nil:
		return m.Base.GetByIdempotencyKey(ctx, key)
	}
	return nil, ErrNotConfigured
}

// Create implements the store.PostStore interface
func (m *MockPostStore) Create(ctx context.Context, post *domain.Post) error {
	m.Calls.record("Create")
	switch {
	case m.CreateFn != nil:
		return m.CreateFn(ctx, post)
	case m.Base != nil:
		return m.Base.Create(ctx, post)
	}
	return ErrNotConfigured
}

// Update implements the store.PostStore interface
func (m *MockPostStore) Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (*domain.Post, error) {
	m.Calls.record("Update")
	switch {
	case m.UpdateFn != nil:
		return m.UpdateFn(ctx, id, patch)
	case m.Base != nil:
		return m.Base.Update(ctx, id, patch)
	}
	return nil, ErrNotConfigured
}

// Delete implements the store.PostStore interface
func (m *MockPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.record("Delete")
	switch {
	case m.DeleteFn != nil:
		return m.DeleteFn(ctx, id)
	case m.Base != nil:
		return m.Base.Delete(ctx, id)
	}
	return ErrNotConfigured
}

// DistinctTags implements the store.PostStore interface
func (m *MockPostStore) DistinctTags(ctx context.Context) ([]string, error) {
	m.Calls.record("DistinctTags")
	switch {
	case m.DistinctTagsFn != nil:
		return m.DistinctTagsFn(ctx)
	case m.Base != nil:
		return m.Base.DistinctTags(ctx)
	}
	return nil, ErrNotConfigured
}

// MockCommentStore implements store.CommentStore for testing
type MockCommentStore struct {
	Base  store.CommentStore
	Calls Calls

	CountFn   func(ctx context.Context, filter store.Filter) (int, error)
	FindFn    func(ctx context.Context, q store.Query) ([]*domain.Comment, error)
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	CreateFn  func(ctx context.Context, comment *domain.Comment) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
}

// Ensure MockCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*MockCommentStore)(nil)

// Count implements the store.CommentStore interface
func (m *MockCommentStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	m.Calls.record("Count")
	switch {
	case m.CountFn != nil:
		return m.CountFn(ctx, filter)
	case m.Base != nil:
		return m.Base.Count(ctx, filter)
	}
	return 0, ErrNotConfigured
}

// Find implements the store.CommentStore interface
func (m *MockCommentStore) Find(ctx context.Context, q store.Query) ([]*domain.Comment, error) {
	m.Calls.record("Find")
	switch {
	case m.FindFn != nil:
		return m.FindFn(ctx, q)
	case m.Base != nil:
		return m.Base.Find(ctx, q)
	}
	return nil, ErrNotConfigured
}

// GetByID implements the store.CommentStore interface
func (m *MockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	m.Calls.record("GetByID")
	switch {
	case m.GetByIDFn != nil:
		return m.GetByIDFn(ctx, id)
	case m.Base != nil:
		return m.Base.GetByID(ctx, id)
	}
	return nil, ErrNotConfigured
}

// Create implements the store.CommentStore interface
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	m.Calls.record("Create")
	switch {
	case m.CreateFn != nil:
		return m.CreateFn(ctx, comment)
	case m.Base != nil:
		return m.Base.Create(ctx, comment)
	}
	return ErrNotConfigured
}

// Delete implements the store.CommentStore interface
func (m *MockCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.record("Delete")
	switch {
	case m.DeleteFn != nil:
		return m.DeleteFn(ctx, id)
	case m.Base != nil:
		return m.Base.Delete(ctx, id)
	}
	return ErrNotConfigured
}
