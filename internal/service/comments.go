package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/paging"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/store"
)

// CommentIncludes selects the references resolved on returned comments.
type CommentIncludes struct {
	Owner bool
	Post  bool
}

// CommentService resolves the comment operations.
type CommentService interface {
	CommentsByPost(ctx context.Context, postID string, params ListParams, filter CommentFilter, inc CommentIncludes) (*paging.Result[*domain.Comment], error)
	CommentsByUser(ctx context.Context, userID string, params ListParams, filter CommentFilter, inc CommentIncludes) (*paging.Result[*domain.Comment], error)
	CreateComment(ctx context.Context, input NewCommentInput, inc CommentIncludes) (*domain.Comment, error)
	// DeleteComment returns the identifier of the removed comment.
	DeleteComment(ctx context.Context, id string) (string, error)
}

// CommentServiceImpl implements the CommentService interface
type CommentServiceImpl struct {
	deps   Deps
	errs   errs
	logger *slog.Logger
}

// Ensure CommentServiceImpl implements CommentService interface
var _ CommentService = (*CommentServiceImpl)(nil)

// NewCommentService creates a new CommentService
func NewCommentService(deps Deps) *CommentServiceImpl {
	if deps.Comments == nil || deps.Posts == nil || deps.Users == nil {
		panic("comment, post and user stores cannot be nil")
	}
	return &CommentServiceImpl{
		deps:   deps,
		errs:   deps.errs("comment_service"),
		logger: deps.logger("comment_service"),
	}
}

func (s *CommentServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *CommentServiceImpl) populators(inc CommentIncludes) []paging.Populator[*domain.Comment] {
	var out []paging.Populator[*domain.Comment]
	if inc.Owner {
		out = append(out, func(ctx context.Context, comments []*domain.Comment) error {
			err := resolveRefs(ctx, comments,
				func(c *domain.Comment) *domain.Ref[domain.User] { return &c.Owner },
				s.deps.Users.GetByID)
			if err != nil {
				return s.errs.internal(ctx, i18n.MsgFailedToFetchCommenter, err)
			}
			return nil
		})
	}
	if inc.Post {
		out = append(out, func(ctx context.Context, comments []*domain.Comment) error {
			err := resolveRefs(ctx, comments,
				func(c *domain.Comment) *domain.Ref[domain.Post] { return &c.Post },
				s.deps.Posts.GetByID)
			if err != nil {
				return s.errs.internal(ctx, i18n.MsgFailedToFetchParent, err)
			}
			return nil
		})
	}
	return out
}

func (s *CommentServiceImpl) page(
	ctx context.Context,
	params ListParams,
	filter store.Filter,
	inc CommentIncludes,
) (*paging.Result[*domain.Comment], error) {
	req := paging.NewRequest(params.Page, params.Limit, params.Sort, filter)
	res, err := paging.Execute[*domain.Comment](ctx, s.deps.Comments, paging.CommentSorts, req, s.populators(inc)...)
	if err != nil {
		return nil, s.errs.list(ctx, err, i18n.MsgFailedToFetchComments)
	}
	return res, nil
}

// CommentsByPost implements CommentService.CommentsByPost
func (s *CommentServiceImpl) CommentsByPost(
	ctx context.Context,
	rawPostID string,
	params ListParams,
	filter CommentFilter,
	inc CommentIncludes,
) (*paging.Result[*domain.Comment], error) {
	postID, err := domain.ParseID(rawPostID)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidPostID, "postId")
	}
	f := filter.build().And(store.Equals(store.FieldPost, postID))
	return s.page(ctx, params, f, inc)
}

// CommentsByUser implements CommentService.CommentsByUser
func (s *CommentServiceImpl) CommentsByUser(
	ctx context.Context,
	rawUserID string,
	params ListParams,
	filter CommentFilter,
	inc CommentIncludes,
) (*paging.Result[*domain.Comment], error) {
	userID, err := domain.ParseID(rawUserID)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidUserID, "userId")
	}
	f := filter.build().And(store.Equals(store.FieldOwner, userID))
	return s.page(ctx, params, f, inc)
}

// CreateComment implements CommentService.CreateComment. The post and then
// the owner must exist; nothing is written otherwise.
func (s *CommentServiceImpl) CreateComment(
	ctx context.Context,
	input NewCommentInput,
	inc CommentIncludes,
) (*domain.Comment, error) {
	if err := s.errs.validation(ctx, input); err != nil {
		return nil, err
	}
	postID, err := domain.ParseID(input.Post)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidPostID, "post")
	}
	ownerID, err := domain.ParseID(input.Owner)
	if err != nil {
		return nil, s.errs.invalidID(ctx, i18n.MsgInvalidOwnerID, "owner")
	}

	post, err := s.deps.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.errs.notFound(ctx, i18n.MsgPostNotFound, "post")
		}
		return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateComment, err)
	}
	owner, err := s.deps.Users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.errs.notFound(ctx, i18n.MsgUserNotFound, "user")
		}
		return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateComment, err)
	}

	publishDate := s.deps.now()
	if input.PublishDate != nil {
		publishDate = input.PublishDate.UTC()
	}
	c := domain.NewComment(input.Message, ownerID, postID, publishDate)
	if err := s.deps.Comments.Create(ctx, c); err != nil {
		return nil, s.errs.write(ctx, err, i18n.MsgCommentNotFound, "comment", i18n.MsgFailedToCreateComment)
	}
	s.log(ctx).Info("comment created",
		slog.String("comment_id", c.ID.String()),
		slog.String("post_id", postID.String()))

	// Both sides were just loaded; embed what the caller asked for.
	if inc.Owner {
		c.Owner = domain.Embedded(ownerID, owner)
	}
	if inc.Post {
		c.Post = domain.Embedded(postID, post)
	}
	return c, nil
}

// DeleteComment implements CommentService.DeleteComment
func (s *CommentServiceImpl) DeleteComment(ctx context.Context, rawID string) (string, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return "", s.errs.invalidID(ctx, i18n.MsgInvalidCommentID, "id")
	}
	if err := s.deps.Comments.Delete(ctx, id); err != nil {
		return "", s.errs.write(ctx, err, i18n.MsgCommentNotFound, "comment", i18n.MsgFailedToDeleteComment)
	}
	s.log(ctx).Info("comment deleted", slog.String("comment_id", id.String()))
	return id.String(), nil
}
