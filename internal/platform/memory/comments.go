package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

var commentSchema = schema[domain.Comment]{
	entity: "comment",
	id:     func(c *domain.Comment) uuid.UUID { return c.ID },
	fields: map[string]getter[domain.Comment]{
		store.FieldMessage:     func(c *domain.Comment) any { return c.Message },
		store.FieldOwner:       func(c *domain.Comment) any { return c.Owner.ID },
		store.FieldPost:        func(c *domain.Comment) any { return c.Post.ID },
		store.FieldPublishDate: func(c *domain.Comment) any { return c.PublishDate },
	},
}

func cloneComment(c *domain.Comment) *domain.Comment {
	out := *c
	out.Owner = domain.RefTo[domain.User](c.Owner.ID)
	out.Post = domain.RefTo[domain.Post](c.Post.ID)
	return &out
}

// CommentStore implements store.CommentStore.
type CommentStore struct {
	s *Store
}

// Count implements store.CommentStore.
func (r *CommentStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	if err := live(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return commentSchema.count(values(r.s.comments), filter)
}

// Find implements store.CommentStore.
func (r *CommentStore) Find(ctx context.Context, q store.Query) ([]*domain.Comment, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	page, err := commentSchema.find(values(r.s.comments), q)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Comment, len(page))
	for i, c := range page {
		out[i] = cloneComment(c)
	}
	return out, nil
}

// GetByID implements store.CommentStore.
func (r *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

// Create implements store.CommentStore.
func (r *CommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.comments[comment.ID]; taken {
		return store.ErrDuplicate
	}
	r.s.comments[comment.ID] = cloneComment(comment)
	return nil
}

// Delete implements store.CommentStore.
func (r *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}
