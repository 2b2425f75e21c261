package service

import (
	"strings"
	"time"

	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

// ListParams are the paging arguments shared by list operations.
type ListParams struct {
	Page  *int   `json:"page"`
	Limit *int   `json:"limit"`
	Sort  string `json:"sort"`
}

// LocationInput is the nested location of a user profile.
type LocationInput struct {
	Street   string `json:"street"   validate:"omitempty,min=5,max=100"`
	City     string `json:"city"     validate:"omitempty,min=2,max=30"`
	State    string `json:"state"    validate:"omitempty,min=2,max=30"`
	Country  string `json:"country"  validate:"omitempty,min=2,max=30"`
	Timezone string `json:"timezone" validate:"omitempty,max=10"`
}

func (l *LocationInput) toDomain() *domain.Location {
	if l == nil {
		return nil
	}
	loc := domain.Location(*l)
	if loc.IsZero() {
		return nil
	}
	return &loc
}

// NewUserInput is the payload of createUser.
type NewUserInput struct {
	IdempotencyKey string         `json:"idempotencyKey" validate:"omitempty,max=128"`
	Title          string         `json:"title"          validate:"omitempty,oneof=mr miss dr"`
	FirstName      string         `json:"firstName"      validate:"required,min=2,max=50"`
	LastName       string         `json:"lastName"       validate:"required,min=2,max=50"`
	Gender         string         `json:"gender"         validate:"omitempty,oneof=male female"`
	Email          string         `json:"email"          validate:"required,email"`
	DateOfBirth    *time.Time     `json:"dateOfBirth"`
	Phone          string         `json:"phone"          validate:"omitempty,max=30"`
	Picture        string         `json:"picture"        validate:"omitempty,max=2048"`
	Location       *LocationInput `json:"location"`
	Password       string         `json:"password"       validate:"omitempty,min=8,max=72"`
}

// UserUpdate is the payload of updateUser; nil fields are left unchanged.
type UserUpdate struct {
	Title       *string        `json:"title"       validate:"omitempty,oneof=mr miss dr"`
	FirstName   *string        `json:"firstName"   validate:"omitempty,min=2,max=50"`
	LastName    *string        `json:"lastName"    validate:"omitempty,min=2,max=50"`
	Gender      *string        `json:"gender"      validate:"omitempty,oneof=male female"`
	Email       *string        `json:"email"       validate:"omitempty,email"`
	DateOfBirth *time.Time     `json:"dateOfBirth"`
	Phone       *string        `json:"phone"       validate:"omitempty,max=30"`
	Picture     *string        `json:"picture"     validate:"omitempty,max=2048"`
	Location    *LocationInput `json:"location"`
}

func (u UserUpdate) patch() store.UserPatch {
	p := store.UserPatch{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		Phone:       u.Phone,
		Picture:     u.Picture,
	}
	if u.Title != nil {
		t := domain.Title(*u.Title)
		p.Title = &t
	}
	if u.Gender != nil {
		g := domain.Gender(*u.Gender)
		p.Gender = &g
	}
	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		p.Email = &email
	}
	if u.Location != nil {
		p.Location = &domain.Location{}
		if loc := u.Location.toDomain(); loc != nil {
			p.Location = loc
		}
	}
	return p
}

// UserFilter narrows users(); text fields match case-insensitive substrings.
type UserFilter struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
}

func (f UserFilter) build() store.Filter {
	var out store.Filter
	if f.FirstName != "" {
		out = out.And(store.Contains(store.FieldFirstName, f.FirstName))
	}
	if f.LastName != "" {
		out = out.And(store.Contains(store.FieldLastName, f.LastName))
	}
	if f.Gender != "" {
		out = out.And(store.Equals(store.FieldGender, strings.ToLower(f.Gender)))
	}
	if f.Email != "" {
		out = out.And(store.Contains(store.FieldEmail, f.Email))
	}
	return out
}

// NewPostInput is the payload of createPost.
type NewPostInput struct {
	IdempotencyKey string   `json:"idempotencyKey" validate:"omitempty,max=128"`
	Text           string   `json:"text"           validate:"required,min=6,max=1000"`
	Image          string   `json:"image"          validate:"omitempty,max=2048"`
	Link           string   `json:"link"           validate:"omitempty,max=2048"`
	Likes          int      `json:"likes"          validate:"gte=0"`
	Tags           []string `json:"tags"           validate:"omitempty,dive,min=1,max=50"`
	Owner          string   `json:"owner"          validate:"required"`
}

// PostUpdate is the payload of updatePost; nil fields are left unchanged.
type PostUpdate struct {
	Text  *string   `json:"text"  validate:"omitempty,min=6,max=1000"`
	Image *string   `json:"image" validate:"omitempty,max=2048"`
	Link  *string   `json:"link"  validate:"omitempty,max=2048"`
	Likes *int      `json:"likes" validate:"omitempty,gte=0"`
	Tags  *[]string `json:"tags"  validate:"omitempty,dive,min=1,max=50"`
	Owner *string   `json:"owner"`
}

// PostFilter narrows posts().
type PostFilter struct {
	Text        string     `json:"text"`
	Owner       string     `json:"owner"`
	Tags        []string   `json:"tags"`
	PublishDate *time.Time `json:"publishDate"`
}

// NewCommentInput is the payload of createComment.
type NewCommentInput struct {
	Message     string     `json:"message"     validate:"required,min=2,max=500"`
	Owner       string     `json:"owner"       validate:"required"`
	Post        string     `json:"post"        validate:"required"`
	PublishDate *time.Time `json:"publishDate"`
}

// CommentFilter narrows comment lists.
type CommentFilter struct {
	Message     string     `json:"message"`
	PublishDate *time.Time `json:"publishDate"`
}

func (f CommentFilter) build() store.Filter {
	var out store.Filter
	if f.Message != "" {
		out = out.And(store.Contains(store.FieldMessage, f.Message))
	}
	if f.PublishDate != nil {
		out = out.And(store.OnOrAfter(store.FieldPublishDate, f.PublishDate.UTC()))
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dedupeTags trims tags and drops empty and repeated ones, keeping order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
