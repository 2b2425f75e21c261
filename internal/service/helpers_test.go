package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/mocks"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/platform/memory"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

var catalog = i18n.MustDefault()

// fixture wires the resolvers over a memory store wrapped in mocks so a test
// can inject individual failures.
type fixture struct {
	users    *mocks.MockUserStore
	posts    *mocks.MockPostStore
	comments *mocks.MockCommentStore
	tokens   *mocks.MockJWTService
	deps     service.Deps

	userSvc    *service.UserServiceImpl
	postSvc    *service.PostServiceImpl
	commentSvc *service.CommentServiceImpl
}

func newFixture(t *testing.T, tweak ...func(*service.Deps)) *fixture {
	t.Helper()
	mem := memory.New()
	_, log := logger.NewTestLogger(t)

	f := &fixture{
		users:    &mocks.MockUserStore{Base: mem.Users()},
		posts:    &mocks.MockPostStore{Base: mem.Posts()},
		comments: &mocks.MockCommentStore{Base: mem.Comments()},
		tokens:   &mocks.MockJWTService{Token: "signed-token"},
	}
	f.deps = service.Deps{
		Users:     f.users,
		Posts:     f.posts,
		Comments:  f.comments,
		Catalog:   catalog,
		Tokens:    f.tokens,
		Passwords: &mocks.MockPasswordHasher{},
		Now:       func() time.Time { return fixedNow },
		Logger:    log,
	}
	for _, fn := range tweak {
		fn(&f.deps)
	}
	f.userSvc = service.NewUserService(f.deps)
	f.postSvc = service.NewPostService(f.deps)
	f.commentSvc = service.NewCommentService(f.deps)
	return f
}

func (f *fixture) createUser(t *testing.T, first, email string) *domain.User {
	t.Helper()
	u, err := f.userSvc.CreateUser(context.Background(), service.NewUserInput{
		FirstName: first,
		LastName:  "Lovelace",
		Email:     email,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) createPost(t *testing.T, owner *domain.User, text string, tags ...string) *domain.Post {
	t.Helper()
	p, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
		Text:  text,
		Owner: owner.ID.String(),
		Tags:  tags,
	}, service.PostIncludes{})
	require.NoError(t, err)
	return p
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

// requireKind asserts err is a typed error of kind and returns it.
func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, "unexpected kind for %v", err)
	return appErr
}

func french() context.Context {
	return i18n.WithLocale(context.Background(), i18n.French)
}
