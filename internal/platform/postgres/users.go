package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

const userColumns = `id, idempotency_key, title, first_name, last_name, gender, email,
	date_of_birth, register_date, phone, picture, location, password_hash`

// UserStore implements store.UserStore on PostgreSQL.
type UserStore struct {
	engine
}

// NewUserStore creates a user store. A nil breaker gets a default one and a
// nil logger falls back to slog.Default().
func NewUserStore(db store.DBTX, breaker *Breaker, logger *slog.Logger) *UserStore {
	return &UserStore{engine: newEngine(db, breaker, logger, "user_store")}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		key      sql.NullString
		title    string
		gender   string
		dob      sql.NullTime
		location []byte
	)
	err := row.Scan(&u.ID, &key, &title, &u.FirstName, &u.LastName, &gender, &u.Email,
		&dob, &u.RegisterDate, &u.Phone, &u.Picture, &location, &u.PasswordHash)
	if err != nil {
		return nil, err
	}
	u.IdempotencyKey = key.String
	u.Title = domain.Title(title)
	u.Gender = domain.Gender(gender)
	u.DateOfBirth = timePtr(dob)
	u.RegisterDate = u.RegisterDate.UTC()
	if len(location) > 0 {
		var loc domain.Location
		if err := json.Unmarshal(location, &loc); err != nil {
			return nil, err
		}
		u.Location = &loc
	}
	return &u, nil
}

func locationJSON(loc *domain.Location) (any, error) {
	if loc == nil {
		return nil, nil
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Count implements store.UserStore.Count
func (s *UserStore) Count(ctx context.Context, filter store.Filter) (int, error) {
	return s.count(ctx, usersTable, filter)
}

// Find implements store.UserStore.Find
func (s *UserStore) Find(ctx context.Context, q store.Query) ([]*domain.User, error) {
	return findAll(ctx, s.engine, usersTable, userColumns, q, scanUser)
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id", id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email", email)
}

// GetByIdempotencyKey implements store.UserStore.GetByIdempotencyKey
func (s *UserStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx, "idempotency_key", key)
}

// getOne loads a user by a unique column. column is always a constant.
func (s *UserStore) getOne(ctx context.Context, column string, value any) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + column + " = $1"
	u, err := guarded(s.engine, func() (*domain.User, error) {
		return scanUser(s.db.QueryRowContext(ctx, query, value))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Debug("user not found", slog.String("by", column))
			return nil, store.ErrUserNotFound
		}
		s.log(ctx).Error("failed to get user", slog.String("by", column), redact.ErrorAttr(err))
		return nil, err
	}
	return u, nil
}

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists or store.ErrIdempotencyKeyExists on unique violations.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	loc, err := locationJSON(u.Location)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (id, idempotency_key, title, first_name, last_name, gender, email,
			date_of_birth, register_date, phone, picture, location, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
	`
	_, err = guarded(s.engine, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query,
			u.ID, nullString(u.IdempotencyKey), string(u.Title), u.FirstName, u.LastName,
			string(u.Gender), u.Email, nullTime(u.DateOfBirth), u.RegisterDate.UTC(),
			u.Phone, u.Picture, loc, u.PasswordHash)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.log(ctx).Warn("duplicate user rejected",
				slog.String("user_id", u.ID.String()), redact.ErrorAttr(err))
			return err
		}
		s.log(ctx).Error("failed to create user",
			slog.String("user_id", u.ID.String()), redact.ErrorAttr(err))
		return err
	}

	s.log(ctx).Info("user created", slog.String("user_id", u.ID.String()))
	return nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error) {
	loc, err := locationJSON(patch.Location)
	if err != nil {
		return nil, err
	}
	var title, gender any
	if patch.Title != nil {
		title = string(*patch.Title)
	}
	if patch.Gender != nil {
		gender = string(*patch.Gender)
	}
	var dob any
	if patch.DateOfBirth != nil {
		dob = patch.DateOfBirth.UTC()
	}

	query := `
		UPDATE users SET
			title         = COALESCE($2, title),
			first_name    = COALESCE($3, first_name),
			last_name     = COALESCE($4, last_name),
			gender        = COALESCE($5, gender),
			email         = COALESCE($6, email),
			date_of_birth = COALESCE($7, date_of_birth),
			phone         = COALESCE($8, phone),
			picture       = COALESCE($9, picture),
			location      = COALESCE($10::jsonb, location)
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := guarded(s.engine, func() (*domain.User, error) {
		return scanUser(s.db.QueryRowContext(ctx, query, id,
			title, nullable(patch.FirstName), nullable(patch.LastName), gender,
			nullable(patch.Email), dob, nullable(patch.Phone), nullable(patch.Picture), loc))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrUserNotFound
		}
		s.log(ctx).Error("failed to update user", slog.String("user_id", id.String()), redact.ErrorAttr(err))
		return nil, err
	}
	s.log(ctx).Info("user updated", slog.String("user_id", id.String()))
	return u, nil
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.exec(ctx, store.ErrUserNotFound, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Error("failed to delete user", slog.String("user_id", id.String()), redact.ErrorAttr(err))
		}
		return err
	}
	s.log(ctx).Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
