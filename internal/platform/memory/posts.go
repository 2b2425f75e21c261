package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
)

var postSchema = schema[domain.Post]{
	entity: "post",
	id:     func(p *domain.Post) uuid.UUID { return p.ID },
	fields: map[string]getter[domain.Post]{
		store.FieldText:        func(p *domain.Post) any { return p.Text },
		store.FieldLink:        func(p *domain.Post) any { return p.Link },
		store.FieldTags:        func(p *domain.Post) any { return p.Tags },
		store.FieldLikes:       func(p *domain.Post) any { return p.Likes },
		store.FieldOwner:       func(p *domain.Post) any { return p.Owner.ID },
		store.FieldPublishDate: func(p *domain.Post) any { return p.PublishDate },
	},
}

// clonePost copies p and drops any embedded owner; stores hold identifiers only.
func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Owner = domain.RefTo[domain.User](p.Owner.ID)
	return &c
}

// PostStore implements store.PostStore.
type PostStore struct {
	s *Store
}

// Count implements store.PostStore.
func (r *PostStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	if err := live(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return postSchema.count(values(r.s.posts), filter)
}

// Find implements store.PostStore.
func (r *PostStore) Find(ctx context.Context, q store.Query) ([]*domain.Post, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	page, err := postSchema.find(values(r.s.posts), q)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Post, len(page))
	for i, p := range page {
		out[i] = clonePost(p)
	}
	return out, nil
}

// GetByID implements store.PostStore.
func (r *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	return clonePost(p), nil
}

// GetByIdempotencyKey implements store.PostStore.
func (r *PostStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Post, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.postKeys[key]
	if !ok || key == "" {
		return nil, store.ErrPostNotFound
	}
	return clonePost(r.s.posts[id]), nil
}

// Create implements store.PostStore.
func (r *PostStore) Create(ctx context.Context, post *domain.Post) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if post.IdempotencyKey != "" {
		if _, taken := r.s.postKeys[post.IdempotencyKey]; taken {
			return store.ErrIdempotencyKeyExists
		}
	}
	if _, taken := r.s.posts[post.ID]; taken {
		return store.ErrDuplicate
	}

	r.s.posts[post.ID] = clonePost(post)
	if post.IdempotencyKey != "" {
		r.s.postKeys[post.IdempotencyKey] = post.ID
	}
	return nil
}

// Update implements store.PostStore.
func (r *PostStore) Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (*domain.Post, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	updated := clonePost(current)
	patch.Apply(updated)
	r.s.posts[id] = updated
	return clonePost(updated), nil
}

// Delete implements store.PostStore.
func (r *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := live(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return store.ErrPostNotFound
	}
	delete(r.s.posts, id)
	if p.IdempotencyKey != "" {
		delete(r.s.postKeys, p.IdempotencyKey)
	}
	return nil
}

// DistinctTags implements store.PostStore.
func (r *PostStore) DistinctTags(ctx context.Context) ([]string, error) {
	if err := live(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range r.s.posts {
		for _, tag := range p.Tags {
			if _, dup := seen[tag]; !dup {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	slices.Sort(tags)
	return tags, nil
}
