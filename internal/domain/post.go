package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a text entry published by a user.
type Post struct {
	ID             uuid.UUID
	IdempotencyKey string
	Text           string
	Image          string
	Link           string
	Likes          int
	Tags           []string
	Owner          Ref[User]
	PublishDate    time.Time
}

// NewPost returns a post with a fresh identifier published at now.
func NewPost(text string, owner uuid.UUID, now time.Time) *Post {
	return &Post{
		ID:          uuid.New(),
		Text:        text,
		Tags:        []string{},
		Owner:       RefTo[User](owner),
		PublishDate: now.UTC(),
	}
}
