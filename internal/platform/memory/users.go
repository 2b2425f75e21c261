package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

var userSchema = schema[domain.User]{
	entity: "user",
	id:     func(u *domain.User) uuid.UUID { return u.ID },
	fields: map[string]getter[domain.User]{
		store.FieldFirstName:    func(u *domain.User) any { return u.FirstName },
		store.FieldLastName:     func(u *domain.User) any { return u.LastName },
		store.FieldGender:       func(u *domain.User) any { return string(u.Gender) },
		store.FieldEmail:        func(u *domain.User) any { return u.Email },
		store.FieldPhone:        func(u *domain.User) any { return u.Phone },
		store.FieldRegisterDate: func(u *domain.User) any { return u.RegisterDate },
	},
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	if u.Location != nil {
		loc := *u.Location
		c.Location = &loc
	}
	return &c
}

// UserStore implements store.UserStore.
type UserStore struct {
	s *Store
}

// Count implements store.UserStore.
func (r *UserStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	if err := live(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return userSchema.count(values(r.s.users), filter)
}

// Find implements store.UserStore.
func (r *UserStore) Find(ctx context.Context, q store.Query) ([]*domain.User, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	page, err := userSchema.find(values(r.s.users), q)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(page))
	for i, u := range page {
		out[i] = cloneUser(u)
	}
	return out, nil
}

// GetByID implements store.UserStore.
func (r *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByEmail implements store.UserStore.
func (r *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.byIndex(ctx, func(s *Store) map[string]uuid.UUID { return s.userEmails }, email)
}

// GetByIdempotencyKey implements store.UserStore.
func (r *UserStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.User, error) {
	return r.byIndex(ctx, func(s *Store) map[string]uuid.UUID { return s.userKeys }, key)
}

func (r *UserStore) byIndex(
	ctx context.Context,
	index func(*Store) map[string]uuid.UUID,
	key string,
) (*domain.User, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := index(r.s)[key]
	if !ok || key == "" {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

// Create implements store.UserStore.
func (r *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.IdempotencyKey != "" {
		if _, taken := r.s.userKeys[user.IdempotencyKey]; taken {
			return store.ErrIdempotencyKeyExists
		}
	}
	if _, taken := r.s.userEmails[user.Email]; taken {
		return store.ErrEmailExists
	}
	if _, taken := r.s.users[user.ID]; taken {
		return store.ErrDuplicate
	}

	r.s.users[user.ID] = cloneUser(user)
	r.s.userEmails[user.Email] = user.ID
	if user.IdempotencyKey != "" {
		r.s.userKeys[user.IdempotencyKey] = user.ID
	}
	return nil
}

// Update implements store.UserStore.
func (r *UserStore) Update(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if patch.Email != nil && *patch.Email != current.Email {
		if _, taken := r.s.userEmails[*patch.Email]; taken {
			return nil, store.ErrEmailExists
		}
	}

	updated := cloneUser(current)
	patch.Apply(updated)
	if updated.Email != current.Email {
		delete(r.s.userEmails, current.Email)
		r.s.userEmails[updated.Email] = id
	}
	r.s.users[id] = updated
	return cloneUser(updated), nil
}

// Delete implements store.UserStore.
func (r *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.userEmails, u.Email)
	if u.IdempotencyKey != "" {
		delete(r.s.userKeys, u.IdempotencyKey)
	}
	return nil
}
