package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/phrazzld/agora-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()

	t.Run("defaults and tag cleanup", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createUser(t, "Ada", "ada@example.com")

		p, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			Text:  "first steps in agora",
			Owner: owner.ID.String(),
			Tags:  []string{" go ", "news", "go", ""},
		}, service.PostIncludes{})
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "news"}, p.Tags)
		assert.Zero(t, p.Likes)
		assert.Equal(t, fixedNow, p.PublishDate)
		assert.False(t, p.Owner.Resolved())
	})

	t.Run("owner resolved only when asked", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createUser(t, "Ada", "ada@example.com")

		p, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			Text: "resolved owner post", Owner: owner.ID.String(),
		}, service.PostIncludes{Owner: true})
		require.NoError(t, err)
		require.True(t, p.Owner.Resolved())
		assert.Equal(t, "Ada", p.Owner.Value.FirstName)
	})

	t.Run("idempotent replay", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createUser(t, "Ada", "ada@example.com")
		input := service.NewPostInput{IdempotencyKey: "post-1", Text: "only once please", Owner: owner.ID.String()}

		first, err := f.postSvc.CreatePost(context.Background(), input, service.PostIncludes{})
		require.NoError(t, err)
		second, err := f.postSvc.CreatePost(context.Background(), input, service.PostIncludes{})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, f.posts.Calls.Count("Create"))
	})

	t.Run("lost idempotency race is an invalid body", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createUser(t, "Ada", "ada@example.com")
		winner := domain.NewPost("created concurrently", owner.ID, fixedNow)
		winner.IdempotencyKey = "race"
		require.NoError(t, f.posts.Base.Create(context.Background(), winner))

		f.posts.GetByIdempotencyKeyFn = func(context.Context, string) (*domain.Post, error) {
			return nil, store.ErrNotFound
		}

		_, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			IdempotencyKey: "race", Text: "created concurrently", Owner: owner.ID.String(),
		}, service.PostIncludes{})
		appErr := requireKind(t, err, apperr.InvalidBody)
		assert.Equal(t, "idempotencyKeyExists", appErr.Details["reason"])
		assert.Equal(t, 1, f.posts.Calls.Count("GetByIdempotencyKey"))
	})

	t.Run("unknown owner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			Text: "orphan post text", Owner: uuid.NewString(),
		}, service.PostIncludes{})
		appErr := requireKind(t, err, apperr.ResourceNotFound)
		assert.Equal(t, "user", appErr.Details["resource"])
		assert.Zero(t, f.posts.Calls.Count("Create"))
	})

	t.Run("malformed owner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			Text: "orphan post text", Owner: "42",
		}, service.PostIncludes{})
		requireKind(t, err, apperr.InvalidParameters)
		assert.Zero(t, f.users.Calls.Count("GetByID"))
	})

	t.Run("text too short", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.createUser(t, "Ada", "ada@example.com")

		_, err := f.postSvc.CreatePost(context.Background(), service.NewPostInput{
			Text: "tiny", Owner: owner.ID.String(),
		}, service.PostIncludes{})
		appErr := requireKind(t, err, apperr.InvalidBody)
		assert.Contains(t, appErr.Details["fields"], "text")
	})
}

func TestPostQueries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "Ada", "ada@example.com")
	alan := f.createUser(t, "Alan", "alan@example.com")

	f.createPost(t, ada, "engines and looms", "math", "history")
	f.createPost(t, alan, "machines that think", "ai")
	f.createPost(t, alan, "codebreaking at the park", "history")

	t.Run("by user", func(t *testing.T) {
		res, err := f.postSvc.PostsByUser(ctx, alan.ID.String(), service.ListParams{}, service.PostIncludes{Owner: true})
		require.NoError(t, err)
		require.Len(t, res.Data, 2)
		for _, p := range res.Data {
			require.True(t, p.Owner.Resolved())
			assert.Equal(t, "Alan", p.Owner.Value.FirstName)
		}
	})

	t.Run("by malformed user id", func(t *testing.T) {
		_, err := f.postSvc.PostsByUser(ctx, "nope", service.ListParams{}, service.PostIncludes{})
		requireKind(t, err, apperr.InvalidParameters)
	})

	t.Run("by tag", func(t *testing.T) {
		res, err := f.postSvc.PostsByTag(ctx, "history", service.ListParams{}, service.PostIncludes{})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Pagination.TotalRecords)

		_, err = f.postSvc.PostsByTag(ctx, "  ", service.ListParams{}, service.PostIncludes{})
		requireKind(t, err, apperr.InvalidParameters)
	})

	t.Run("filter by owner and tags", func(t *testing.T) {
		res, err := f.postSvc.ListPosts(ctx, service.ListParams{}, service.PostFilter{
			Owner: alan.ID.String(),
			Tags:  []string{"history", "math"},
		}, service.PostIncludes{})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "codebreaking at the park", res.Data[0].Text)

		_, err = f.postSvc.ListPosts(ctx, service.ListParams{}, service.PostFilter{Owner: "x"}, service.PostIncludes{})
		requireKind(t, err, apperr.InvalidParameters)
	})

	t.Run("search", func(t *testing.T) {
		res, err := f.postSvc.SearchPosts(ctx, "AI", service.ListParams{}, service.PostIncludes{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Pagination.TotalRecords)
	})

	t.Run("tags", func(t *testing.T) {
		tags, err := f.postSvc.Tags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ai", "history", "math"}, tags)
	})

	t.Run("get", func(t *testing.T) {
		_, err := f.postSvc.GetPost(ctx, uuid.NewString(), service.PostIncludes{})
		requireKind(t, err, apperr.ResourceNotFound)
	})
}

func TestPostOwnerResolution(t *testing.T) {
	t.Parallel()

	t.Run("dangling owner is an internal failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ada := f.createUser(t, "Ada", "ada@example.com")
		p := f.createPost(t, ada, "outlives its author")
		_, err := f.userSvc.DeleteUser(context.Background(), ada.ID.String())
		require.NoError(t, err)

		_, err = f.postSvc.GetPost(context.Background(), p.ID.String(), service.PostIncludes{Owner: true})
		ae := requireKind(t, err, apperr.InternalFailure)
		assert.Equal(t, "Failed to fetch post owner", ae.Message)

		got, err := f.postSvc.GetPost(context.Background(), p.ID.String(), service.PostIncludes{})
		require.NoError(t, err)
		assert.False(t, got.Owner.Resolved())
		assert.Equal(t, ada.ID, got.Owner.ID)
	})

	t.Run("lookup failure is internal and fetches each owner once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ada := f.createUser(t, "Ada", "ada@example.com")
		f.createPost(t, ada, "first of several")
		f.createPost(t, ada, "second of several")

		f.users.GetByIDFn = func(context.Context, uuid.UUID) (*domain.User, error) {
			return nil, errors.New("connection reset by peer")
		}
		_, err := f.postSvc.ListPosts(context.Background(), service.ListParams{}, service.PostFilter{},
			service.PostIncludes{Owner: true})
		appErr := requireKind(t, err, apperr.InternalFailure)
		assert.Equal(t, "Failed to fetch post owner", appErr.Message)
	})

	t.Run("owners are memoized per page", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ada := f.createUser(t, "Ada", "ada@example.com")
		f.createPost(t, ada, "first of several")
		f.createPost(t, ada, "second of several")
		before := f.users.Calls.Count("GetByID")

		_, err := f.postSvc.ListPosts(context.Background(), service.ListParams{}, service.PostFilter{},
			service.PostIncludes{Owner: true})
		require.NoError(t, err)
		assert.Equal(t, before+1, f.users.Calls.Count("GetByID"))
	})
}

func TestUpdateAndDeletePost(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ada := f.createUser(t, "Ada", "ada@example.com")
	alan := f.createUser(t, "Alan", "alan@example.com")
	p := f.createPost(t, ada, "original text here", "draft")

	tags := []string{" final ", "", "final"}
	updated, err := f.postSvc.UpdatePost(ctx, p.ID.String(), service.PostUpdate{
		Likes: intPtr(3),
		Tags:  &tags,
		Owner: strPtr(alan.ID.String()),
	}, service.PostIncludes{Owner: true})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Likes)
	assert.Equal(t, []string{"final"}, updated.Tags)
	assert.Equal(t, "original text here", updated.Text)
	require.True(t, updated.Owner.Resolved())
	assert.Equal(t, "Alan", updated.Owner.Value.FirstName)

	_, err = f.postSvc.UpdatePost(ctx, p.ID.String(), service.PostUpdate{Owner: strPtr(uuid.NewString())}, service.PostIncludes{})
	requireKind(t, err, apperr.ResourceNotFound)

	_, err = f.postSvc.UpdatePost(ctx, p.ID.String(), service.PostUpdate{Likes: intPtr(-1)}, service.PostIncludes{})
	requireKind(t, err, apperr.InvalidBody)

	id, err := f.postSvc.DeletePost(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), id)

	_, err = f.postSvc.UpdatePost(ctx, p.ID.String(), service.PostUpdate{Likes: intPtr(1)}, service.PostIncludes{})
	requireKind(t, err, apperr.ResourceNotFound)
}
