package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

const commentColumns = `id, message, owner_id, post_id, publish_date`

// CommentStore implements store.CommentStore on PostgreSQL.
type CommentStore struct {
	engine
}

// NewCommentStore creates a comment store.
func NewCommentStore(db store.DBTX, breaker *Breaker, logger *slog.Logger) *CommentStore {
	return &CommentStore{engine: newEngine(db, breaker, logger, "comment_store")}
}

// Ensure CommentStore implements store.CommentStore interface
var _ store.CommentStore = (*CommentStore)(nil)

func scanComment(row rowScanner) (*domain.Comment, error) {
	var (
		c           domain.Comment
		owner, post uuid.UUID
	)
	if err := row.Scan(&c.ID, &c.Message, &owner, &post, &c.PublishDate); err != nil {
		return nil, err
	}
	c.Owner = domain.RefTo[domain.User](owner)
	c.Post = domain.RefTo[domain.Post](post)
	c.PublishDate = c.PublishDate.UTC()
	return &c, nil
}

// Count implements store.CommentStore.Count
func (s *CommentStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	return s.count(ctx, commentsTable, filter)
}

// Find implements store.CommentStore.Find
func (s *CommentStore) Find(ctx context.Context, q store.Query) ([]*domain.Comment, error) {
	return findAll(ctx, s.engine, commentsTable, commentColumns, q, scanComment)
}

// GetByID implements store.CommentStore.GetByID
func (s *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE id = $1"
	c, err := guarded(s.engine, func() (*domain.Comment, error) {
		return scanComment(s.db.QueryRowContext(ctx, query, id))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrCommentNotFound
		}
		s.log(ctx).Error("failed to get comment", slog.String("comment_id", id.String()), redact.ErrorAttr(err))
		return nil, err
	}
	return c, nil
}

// Create implements store.CommentStore.Create
func (s *CommentStore) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (id, message, owner_id, post_id, publish_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := guarded(s.engine, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, c.ID, c.Message, c.Owner.ID, c.Post.ID, c.PublishDate.UTC())
	})
	if err != nil {
		s.log(ctx).Error("failed to create comment",
			slog.String("comment_id", c.ID.String()), redact.ErrorAttr(err))
		return err
	}
	s.log(ctx).Info("comment created",
		slog.String("comment_id", c.ID.String()),
		slog.String("post_id", c.Post.ID.String()))
	return nil
}

// Delete implements store.CommentStore.Delete
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.exec(ctx, store.ErrCommentNotFound, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to delete comment",
				slog.String("comment_id", id.String()), redact.ErrorAttr(err))
		}
		return err
	}
	s.log(ctx).Info("comment deleted", slog.String("comment_id", id.String()))
	return nil
}
