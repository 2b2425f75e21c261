package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a message left by a user on a post.
type Comment struct {
	ID          uuid.UUID
	Message     string
	Owner       Ref[User]
	Post        Ref[Post]
	PublishDate time.Time
}

// NewComment returns a comment with a fresh identifier published at now.
func NewComment(message string, owner, post uuid.UUID, now time.Time) *Comment {
	return &Comment{
		ID:          uuid.New(),
		Message:     message,
		Owner:       RefTo[User](owner),
		Post:        RefTo[Post](post),
		PublishDate: now.UTC(),
	}
}
