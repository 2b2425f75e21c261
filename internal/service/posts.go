package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/paging"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

// PostIncludes selects the references resolved on returned posts.
type PostIncludes struct {
	Owner bool
}

// PostService resolves the post and tag operations.
type PostService interface {
	ListPosts(ctx context.Context, params ListParams, filter PostFilter, inc PostIncludes) (*paging.Result[*domain.Post], error)
	PostsByUser(ctx context.Context, userID string, params ListParams, inc PostIncludes) (*paging.Result[*domain.Post], error)
	PostsByTag(ctx context.Context, tag string, params ListParams, inc PostIncludes) (*paging.Result[*domain.Post], error)
	SearchPosts(ctx context.Context, query string, params ListParams, inc PostIncludes) (*paging.Result[*domain.Post], error)
	GetPost(ctx context.Context, id string, inc PostIncludes) (*domain.Post, error)
	CreatePost(ctx context.Context, input NewPostInput, inc PostIncludes) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, input PostUpdate, inc PostIncludes) (*domain.Post, error)
	// DeletePost returns the identifier of the removed post.
	DeletePost(ctx context.Context, id string) (string, error)
	Tags(ctx context.Context) ([]string, error)
}

// PostServiceImpl implements the PostService interface
type PostServiceImpl struct {
	deps   Deps
	errs   errs
	logger *slog.Logger
}

// Ensure PostServiceImpl implements PostService interface
var _ PostService = (*PostServiceImpl)(nil)

// NewPostService creates a new PostService
func NewPostService(deps Deps) *PostServiceImpl {
	if deps.Posts == nil || deps.Users == nil {
		panic("post and user stores cannot be nil")
	}
	return &PostServiceImpl{
		deps:   deps,
		errs:   deps.errs("post_service"),
		logger: deps.logger("post_service"),
	}
}

func (s *PostServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// populators returns the reference resolution requested by inc.
func (s *PostServiceImpl) populators(inc PostIncludes) []paging.Populator[*domain.Post] {
	if !inc.Owner {
		return nil
	}
	return []paging.Populator[*domain.Post]{
		func(ctx context.Context, posts []*domain.Post) error {
			err := resolveRefs(ctx, posts,
				func(p *domain.Post) *domain.Ref[domain.User] { return &p.Owner },
				s.deps.Users.GetByID)
			if err != nil {
				return s.errs.internal(ctx, i18n.MsgFailedToFetchOwner, err)
			}
			return nil
		},
	}
}

func (s *PostServiceImpl) one(ctx context.Context, p *domain.Post, inc PostIncludes) (*domain.Post, error) {
	for _, populate := range s.populators(inc) {
		if err := populate(ctx, []*domain.Post{p}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *PostServiceImpl) page(
	ctx context.Context,
	params ListParams,
	filter store.Filter,
	inc PostIncludes,
	failKey string,
) (*paging.Result[*domain.Post], error) {
	req := paging.NewRequest(params.Page, params.Limit, params.Sort, filter)
	res, err := paging.Execute[*domain.Post](ctx, s.deps.Posts, paging.PostSorts, req, s.populators(inc)...)
	if err != nil {
		return nil, s.errs.list(ctx, err, failKey)
	}
	return res, nil
}

// ownerExists verifies the referenced user exists.
func (s *PostServiceImpl) ownerExists(ctx context.Context, id uuid.UUID, failKey string) error {
	_, err := s.deps.Users.GetByID(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return s.errs.notFound(ctx, i18n.MsgUserNotFound, "user")
	default:
		return s.errs.internal(ctx, failKey, err)
	}
}

// ListPosts implements PostService.ListPosts
func (s *PostServiceImpl) ListPosts(
	ctx context.Context,
	params ListParams,
	filter PostFilter,
	inc PostIncludes,
) (*paging.Result[*domain.Post], error) {
	var f store.Filter
	if filter.Text != "" {
		f = f.And(store.Contains(store.FieldText, filter.Text))
	}
	if filter.Owner != "" {
		owner, err := domain.ParseID(filter.Owner)
		if err != nil {
			return nil, s.errs.invalidID(ctx, i18n.MsgInvalidOwnerID, "owner")
		}
		f = f.And(store.Equals(store.FieldOwner, owner))
	}
	if tags := dedupeTags(filter.Tags); len(tags) > 0 {
		f = f.And(store.In(store.FieldTags, tags))
	}
	if filter.PublishDate != nil {
		f = f.And(store.OnOrAfter(store.FieldPublishDate, filter.PublishDate.UTC()))
	}
	return s.page(ctx, params, f, inc, i18n.MsgFailedToFetchPosts)
}

// PostsByUser implements PostService.PostsByUser
func (s *PostServiceImpl) PostsByUser(
	ctx context.Context,
	rawUserID string,
	params ListParams,
	inc PostIncludes,
) (*paging.Result[*domain.Post], error) {
	userID, err := domain.ParseID(rawUserID)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidUserID, "userId")
	}
	return s.page(ctx, params, store.Where(store.Equals(store.FieldOwner, userID)), inc, i18n.MsgFailedToFetchPosts)
}

// PostsByTag implements PostService.PostsByTag
func (s *PostServiceImpl) PostsByTag(
	ctx context.Context,
	tag string,
	params ListParams,
	inc PostIncludes,
) (*paging.Result[*domain.Post], error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, s.errs.invalidArguments(ctx, "tag")
	}
	return s.page(ctx, params, store.Where(store.Equals(store.FieldTags, tag)), inc, i18n.MsgFailedToFetchPosts)
}

// SearchPosts matches query against text, tags and link.
func (s *PostServiceImpl) SearchPosts(
	ctx context.Context,
	query string,
	params ListParams,
	inc PostIncludes,
) (*paging.Result[*domain.Post], error) {
	var f store.Filter
	if q := strings.TrimSpace(query); q != "" {
		f = f.Or(
			store.Contains(store.FieldText, q),
			store.Contains(store.FieldTags, q),
			store.Contains(store.FieldLink, q),
		)
	}
	return s.page(ctx, params, f, inc, i18n.MsgFailedToSearchPosts)
}

// GetPost implements PostService.GetPost
func (s *PostServiceImpl) GetPost(ctx context.Context, rawID string, inc PostIncludes) (*domain.Post, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidPostID, "id")
	}
	p, err := s.deps.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.errs.notFound(ctx, i18n.MsgPostNotFound, "post")
		}
		return nil, s.errs.internal(ctx, i18n.MsgFailedToFetchPost, err)
	}
	return s.one(ctx, p, inc)
}

// CreatePost implements PostService.CreatePost. A repeated idempotency key
// returns the post created first, unchanged.
func (s *PostServiceImpl) CreatePost(ctx context.Context, input NewPostInput, inc PostIncludes) (*domain.Post, error) {
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	input.Tags = dedupeTags(input.Tags)
	if err := s.errs.validation(ctx, input); err != nil {
		return nil, err
	}
	owner, err := domain.ParseID(input.Owner)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidOwnerID, "owner")
	}

	if input.IdempotencyKey != "" {
		existing, err := s.deps.Posts.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		switch {
		case err == nil:
			s.log(ctx).Info("idempotent post creation replayed",
				slog.String("post_id", existing.ID.String()))
			return s.one(ctx, existing, inc)
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.errs.internal(ctx, i18n.MsgFailedToCreatePost, err)
		}
	}

	if err := s.ownerExists(ctx, owner, i18n.MsgFailedToCreatePost); err != nil {
		return nil, err
	}

	p := domain.NewPost(input.Text, owner, s.deps.now())
	p.IdempotencyKey = input.IdempotencyKey
	p.Image = input.Image
	p.Link = input.Link
	p.Likes = input.Likes
	p.Tags = input.Tags

	if err := s.deps.Posts.Create(ctx, p); err != nil {
		if store.IsDuplicateError(err) {
			s.log(ctx).Debug("post creation lost a uniqueness race", redact.ErrorAttr(err))
		}
		return nil, s.errs.write(ctx, err, i18n.MsgPostNotFound, "post", i18n.MsgFailedToCreatePost)
	}
	s.log(ctx).Info("post created",
		slog.String("post_id", p.ID.String()),
		slog.String("owner_id", owner.String()))
	return s.one(ctx, p, inc)
}

// UpdatePost implements PostService.UpdatePost
func (s *PostServiceImpl) UpdatePost(
	ctx context.Context,
	rawID string,
	input PostUpdate,
	inc PostIncludes,
) (*domain.Post, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidPostID, "id")
	}
	if input.Tags != nil {
		tags := dedupeTags(*input.Tags)
		input.Tags = &tags
	}
	if err := s.errs.validation(ctx, input); err != nil {
		return nil, err
	}

	patch := store.PostPatch{
		Text: input.Text, Image: input.Image, Link: input.Link, Likes: input.Likes, Tags: input.Tags,
	}
	if input.Owner != nil {
		owner, err := domain.ParseID(*input.Owner)
		if err != nil {
			return nil, s.errs.invalidID(ctx, i18n.MsgInvalidOwnerID, "owner")
		}
		if err := s.ownerExists(ctx, owner, i18n.MsgFailedToUpdatePost); err != nil {
			return nil, err
		}
		patch.Owner = &owner
	}

	p, err := s.deps.Posts.Update(ctx, id, patch)
	if err != nil {
		return nil, s.errs.write(ctx, err, i18n.MsgPostNotFound, "post", i18n.MsgFailedToUpdatePost)
	}
	s.log(ctx).Info("post updated", slog.String("post_id", id.String()))
	return s.one(ctx, p, inc)
}

// DeletePost implements PostService.DeletePost. Comments on the post are kept.
func (s *PostServiceImpl) DeletePost(ctx context.Context, rawID string) (string, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return "", s.errs.invalidID(ctx, i18n.MsgInvalidPostID, "id")
	}
	if err := s.deps.Posts.Delete(ctx, id); err != nil {
		return "", s.errs.write(ctx, err, i18n.MsgPostNotFound, "post", i18n.MsgFailedToDeletePost)
	}
	s.log(ctx).Info("post deleted", slog.String("post_id", id.String()))
	return id.String(), nil
}

// Tags implements PostService.Tags
func (s *PostServiceImpl) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.deps.Posts.DistinctTags(ctx)
	if err != nil {
		return nil, s.errs.internal(ctx, i18n.MsgFailedToFetchTags, err)
	}
	return tags, nil
}
