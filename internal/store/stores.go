package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter Filter) (int, error)

	// Find returns one ordered window of users matching q.Filter.
	Find(ctx context.Context, q Query) ([]*domain.User, error)

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by exact email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIdempotencyKey retrieves the user created with key.
	// Returns ErrUserNotFound if no user carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.User, error)

	// Create saves a new user.
	// Returns ErrEmailExists or ErrIdempotencyKeyExists on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// Update merges patch into the stored user and returns the result.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// when changing to an email that is taken.
	Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*domain.User, error)

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostStore defines the interface for post data persistence.
type PostStore interface {
	Count(ctx context.Context, filter Filter) (int, error)
	Find(ctx context.Context, q Query) ([]*domain.Post, error)

	// GetByID returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// GetByIdempotencyKey returns ErrPostNotFound if no post carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Post, error)

	// Create returns ErrIdempotencyKeyExists when the key is taken.
	Create(ctx context.Context, post *domain.Post) error

	Update(ctx context.Context, id uuid.UUID, patch PostPatch) (*domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DistinctTags returns the sorted, de-duplicated union of all post tags.
	DistinctTags(ctx context.Context) ([]string, error)
}

// CommentStore defines the interface for comment data persistence.
type CommentStore interface {
	Count(ctx context.Context, filter Filter) (int, error)
	Find(ctx context.Context, q Query) ([]*domain.Comment, error)

	// GetByID returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	Create(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserPatch lists the user fields to change; nil fields are left as stored.
type UserPatch struct {
	Title       *domain.Title
	FirstName   *string
	LastName    *string
	Gender      *domain.Gender
	Email       *string
	DateOfBirth *time.Time
	Phone       *string
	Picture     *string
	Location    *domain.Location
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *domain.User) {
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.UTC()
		u.DateOfBirth = &dob
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Picture != nil {
		u.Picture = *p.Picture
	}
	if p.Location != nil {
		loc := *p.Location
		u.Location = &loc
	}
}

// PostPatch lists the post fields to change; nil fields are left as stored.
type PostPatch struct {
	Text  *string
	Image *string
	Link  *string
	Likes *int
	Tags  *[]string
	Owner *uuid.UUID
}

// Apply merges the patch into p.
func (p PostPatch) Apply(post *domain.Post) {
	if p.Text != nil {
		post.Text = *p.Text
	}
	if p.Image != nil {
		post.Image = *p.Image
	}
	if p.Link != nil {
		post.Link = *p.Link
	}
	if p.Likes != nil {
		post.Likes = *p.Likes
	}
	if p.Tags != nil {
		post.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Owner != nil && *p.Owner != post.Owner.ID {
		post.Owner = domain.RefTo[domain.User](*p.Owner)
	}
}
