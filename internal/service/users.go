package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/paging"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/service/auth"
	"github.com/phrazzld/agora-api/internal/store"
)

// UserService resolves the user operations.
type UserService interface {
	ListUsers(ctx context.Context, params ListParams, filter UserFilter) (*paging.Result[*domain.User], error)
	SearchUsers(ctx context.Context, query string, params ListParams) (*paging.Result[*domain.User], error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input NewUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UserUpdate) (*domain.User, error)
	// DeleteUser returns the identifier of the removed user.
	DeleteUser(ctx context.Context, id string) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	deps   Deps
	errs   errs
	logger *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(deps Deps) *UserServiceImpl {
	if deps.Users == nil {
		panic("user store cannot be nil")
	}
	return &UserServiceImpl{
		deps:   deps,
		errs:   deps.errs("user_service"),
		logger: deps.logger("user_service"),
	}
}

func (s *UserServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *UserServiceImpl) parseID(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return uuid.Nil, s.errs.invalidID(ctx, i18n.MsgInvalidUserID, "id")
	}
	return id, nil
}

// ListUsers implements UserService.ListUsers
func (s *UserServiceImpl) ListUsers(
	ctx context.Context,
	params ListParams,
	filter UserFilter,
) (*paging.Result[*domain.User], error) {
	req := paging.NewRequest(params.Page, params.Limit, params.Sort, filter.build())
	res, err := paging.Execute[*domain.User](ctx, s.deps.Users, paging.UserSorts, req)
	if err != nil {
		return nil, s.errs.list(ctx, err, i18n.MsgFailedToFetchUsers)
	}
	return res, nil
}

// SearchUsers matches query against first name, last name, email and phone.
func (s *UserServiceImpl) SearchUsers(
	ctx context.Context,
	query string,
	params ListParams,
) (*paging.Result[*domain.User], error) {
	var filter store.Filter
	if q := strings.TrimSpace(query); q != "" {
		filter = filter.Or(
			store.Contains(store.FieldFirstName, q),
			store.Contains(store.FieldLastName, q),
			store.Contains(store.FieldEmail, q),
			store.Contains(store.FieldPhone, q),
		)
	}
	req := paging.NewRequest(params.Page, params.Limit, params.Sort, filter)
	res, err := paging.Execute[*domain.User](ctx, s.deps.Users, paging.UserSorts, req)
	if err != nil {
		return nil, s.errs.list(ctx, err, i18n.MsgFailedToSearchUsers)
	}
	return res, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, rawID string) (*domain.User, error) {
	id, err := s.parseID(ctx, rawID)
	if err != nil {
		return nil, err
	}
	user, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log(ctx).Debug("user not found", slog.String("user_id", id.String()))
			return nil, s.errs.notFound(ctx, i18n.MsgUserNotFound, "user")
		}
		return nil, s.errs.internal(ctx, i18n.MsgFailedToFetchUser, err)
	}
	return user, nil
}

// CreateUser implements UserService.CreateUser. A repeated idempotency key
// returns the user created first, unchanged.
func (s *UserServiceImpl) CreateUser(ctx context.Context, input NewUserInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	if err := s.errs.validation(ctx, input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.deps.Users.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		switch {
		case err == nil:
			s.log(ctx).Info("idempotent user creation replayed",
				slog.String("user_id", existing.ID.String()))
			return existing, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateUser, err)
		}
	}

	switch _, err := s.deps.Users.GetByEmail(ctx, input.Email); {
	case err == nil:
		return nil, s.errs.duplicate(ctx, store.ErrEmailExists)
	case !errors.Is(err, store.ErrNotFound):
		return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateUser, err)
	}

	user := domain.NewUser(strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName),
		input.Email, s.deps.now())
	user.IdempotencyKey = input.IdempotencyKey
	user.Title = domain.Title(input.Title)
	user.Gender = domain.Gender(input.Gender)
	user.Phone = input.Phone
	user.Picture = input.Picture
	user.Location = input.Location.toDomain()
	if input.DateOfBirth != nil {
		dob := input.DateOfBirth.UTC()
		user.DateOfBirth = &dob
	}
	if input.Password != "" {
		if s.deps.Passwords == nil {
			return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateUser, errors.New("no password hasher configured"))
		}
		hash, err := s.deps.Passwords.Hash(input.Password)
		if err != nil {
			return nil, s.errs.internal(ctx, i18n.MsgFailedToCreateUser, err)
		}
		user.PasswordHash = hash
	}

	if err := s.deps.Users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			s.log(ctx).Debug("user creation lost a uniqueness race", redact.ErrorAttr(err))
		}
		return nil, s.errs.write(ctx, err, i18n.MsgUserNotFound, "user", i18n.MsgFailedToCreateUser)
	}

	s.log(ctx).Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

// UpdateUser implements UserService.UpdateUser
func (s *UserServiceImpl) UpdateUser(ctx context.Context, rawID string, input UserUpdate) (*domain.User, error) {
	id, err := s.parseID(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.errs.validation(ctx, input); err != nil {
		return nil, err
	}

	user, err := s.deps.Users.Update(ctx, id, input.patch())
	if err != nil {
		return nil, s.errs.write(ctx, err, i18n.MsgUserNotFound, "user", i18n.MsgFailedToUpdateUser)
	}
	s.log(ctx).Info("user updated", slog.String("user_id", id.String()))
	return user, nil
}

// DeleteUser implements UserService.DeleteUser. Posts and comments keep their
// reference to the removed user.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, rawID string) (string, error) {
	id, err := s.parseID(ctx, rawID)
	if err != nil {
		return "", err
	}
	if err := s.deps.Users.Delete(ctx, id); err != nil {
		return "", s.errs.write(ctx, err, i18n.MsgUserNotFound, "user", i18n.MsgFailedToDeleteUser)
	}
	s.log(ctx).Info("user deleted", slog.String("user_id", id.String()))
	return id.String(), nil
}

// Login implements UserService.Login. Every credential failure looks the same
// to the caller.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	failed := func(cause error) error {
		s.log(ctx).Debug("login rejected", redact.ErrorAttr(cause))
		return apperr.Wrap(apperr.InternalFailure, s.errs.msg(ctx, i18n.MsgLoginFailed), cause,
			apperr.Details{detailReason: reasonLoginFailed})
	}

	user, err := s.deps.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, failed(err)
		}
		return nil, s.errs.internal(ctx, i18n.MsgLoginFailed, err)
	}

	switch {
	case user.HasPassword():
		if s.deps.Passwords == nil {
			return nil, failed(errors.New("no password hasher configured"))
		}
		if err := s.deps.Passwords.Compare(user.PasswordHash, password); err != nil {
			return nil, failed(err)
		}
	case !s.deps.AllowPasswordlessLogin:
		return nil, failed(auth.ErrPasswordMismatch)
	}

	if s.deps.Tokens == nil {
		return nil, failed(errors.New("no token service configured"))
	}
	token, err := s.deps.Tokens.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, failed(err)
	}

	s.log(ctx).Info("user logged in", slog.String("user_id", user.ID.String()))
	return &LoginResult{Token: token, User: user}, nil
}
