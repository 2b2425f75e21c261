package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

const postColumns = `id, idempotency_key, text, image, link, likes, tags, owner_id, publish_date`

// PostStore implements store.PostStore on PostgreSQL.
type PostStore struct {
	engine
}

// NewPostStore creates a post store.
func NewPostStore(db store.DBTX, breaker *Breaker, logger *slog.Logger) *PostStore {
	return &PostStore{engine: newEngine(db, breaker, logger, "post_store")}
}

// Ensure PostStore implements store.PostStore interface
var _ store.PostStore = (*PostStore)(nil)

// postScanner scans post rows. The pgtype map decodes text[] through
// database/sql and is not shared between goroutines.
func postScanner() func(rowScanner) (*domain.Post, error) {
	types := pgtype.NewMap()
	return func(row rowScanner) (*domain.Post, error) {
		var (
			p     domain.Post
			key   sql.NullString
			tags  []string
			owner uuid.UUID
		)
		err := row.Scan(&p.ID, &key, &p.Text, &p.Image, &p.Link, &p.Likes,
			types.SQLScanner(&tags), &owner, &p.PublishDate)
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		p.IdempotencyKey = key.String
		p.Tags = tags
		p.Owner = domain.RefTo[domain.User](owner)
		p.PublishDate = p.PublishDate.UTC()
		return &p, nil
	}
}

// Count implements store.PostStore.Count
func (s *PostStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	return s.count(ctx, postsTable, filter)
}

// Find implements store.PostStore.Find
func (s *PostStore) Find(ctx context.Context, q store.Query) ([]*domain.Post, error) {
	return findAll(ctx, s.engine, postsTable, postColumns, q, postScanner())
}

// GetByID implements store.PostStore.GetByID
func (s *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return s.getOne(ctx, "id", id)
}

// GetByIdempotencyKey implements store.PostStore.GetByIdempotencyKey
func (s *PostStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Post, error) {
	if key == "" {
		return nil, store.ErrPostNotFound
	}
	return s.getOne(ctx, "idempotency_key", key)
}

func (s *PostStore) getOne(ctx context.Context, column string, value any) (*domain.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE " + column + " = $1"
	scan := postScanner()
	p, err := guarded(s.engine, func() (*domain.Post, error) {
		return scan(s.db.QueryRowContext(ctx, query, value))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Debug("post not found", slog.String("by", column))
			return nil, store.ErrPostNotFound
		}
		s.log(ctx).Error("failed to get post", slog.String("by", column), redact.ErrorAttr(err))
		return nil, err
	}
	return p, nil
}

// Create implements store.PostStore.Create
func (s *PostStore) Create(ctx context.Context, p *domain.Post) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	query := `
		INSERT INTO posts (id, idempotency_key, text, image, link, likes, tags, owner_id, publish_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text[], $8, $9)
	`
	_, err := guarded(s.engine, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query,
			p.ID, nullString(p.IdempotencyKey), p.Text, p.Image, p.Link, p.Likes,
			tags, p.Owner.ID, p.PublishDate.UTC())
	})
	if err != nil {
		s.log(ctx).Error("failed to create post",
			slog.String("post_id", p.ID.String()), redact.ErrorAttr(err))
		return err
	}
	s.log(ctx).Info("post created",
		slog.String("post_id", p.ID.String()),
		slog.String("owner_id", p.Owner.ID.String()))
	return nil
}

// Update implements store.PostStore.Update
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (*domain.Post, error) {
	var tags any
	if patch.Tags != nil {
		t := *patch.Tags
		if t == nil {
			t = []string{}
		}
		tags = t
	}
	query := `
		UPDATE posts SET
			text     = COALESCE($2, text),
			image    = COALESCE($3, image),
			link     = COALESCE($4, link),
			likes    = COALESCE($5, likes),
			tags     = COALESCE($6::text[], tags),
			owner_id = COALESCE($7, owner_id)
		WHERE id = $1
		RETURNING ` + postColumns

	scan := postScanner()
	p, err := guarded(s.engine, func() (*domain.Post, error) {
		return scan(s.db.QueryRowContext(ctx, query, id,
			nullable(patch.Text), nullable(patch.Image), nullable(patch.Link),
			nullable(patch.Likes), tags, nullable(patch.Owner)))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrPostNotFound
		}
		s.log(ctx).Error("failed to update post", slog.String("post_id", id.String()), redact.ErrorAttr(err))
		return nil, err
	}
	s.log(ctx).Info("post updated", slog.String("post_id", id.String()))
	return p, nil
}

// Delete implements store.PostStore.Delete
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.exec(ctx, store.ErrPostNotFound, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to delete post", slog.String("post_id", id.String()), redact.ErrorAttr(err))
		}
		return err
	}
	s.log(ctx).Info("post deleted", slog.String("post_id", id.String()))
	return nil
}

// DistinctTags implements store.PostStore.DistinctTags
func (s *PostStore) DistinctTags(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT tag FROM posts, unnest(tags) AS tag ORDER BY tag COLLATE "C"`
	tags, err := guarded(s.engine, func() ([]string, error) {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		tags := []string{}
		for rows.Next() {
			var tag string
			if err := rows.Scan(&tag); err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		}
		return tags, rows.Err()
	})
	if err != nil {
		s.log(ctx).Error("failed to list tags", redact.ErrorAttr(err))
		return nil, store.NewStoreError("post", "distinct tags", "query failed", err)
	}
	return tags, nil
}
