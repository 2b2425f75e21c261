package store_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestFilterComposition(t *testing.T) {
	base := store.Where(store.Equals(store.FieldOwner, uuid.Nil))
	extended := base.And(store.Contains(store.FieldText, "go"))
	search := extended.Or(store.Contains(store.FieldText, "x"), store.Contains(store.FieldLink, "x"))

	assert.Len(t, base.All, 1, "And must not alias the receiver")
	assert.Len(t, extended.All, 2)
	assert.Len(t, search.AnyOf, 2)
	assert.Len(t, search.All, 2)
	assert.True(t, store.Filter{}.IsEmpty())
	assert.False(t, search.IsEmpty())
	assert.Equal(t, "onOrAfter", store.OnOrAfter(store.FieldPublishDate, time.Now()).Op.String())
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, store.Query{Skip: 0, Limit: 1}.Validate())
	assert.ErrorIs(t, store.Query{Skip: -1, Limit: 1}.Validate(), store.ErrInvalidQuery)
	assert.ErrorIs(t, store.Query{Limit: 0}.Validate(), store.ErrInvalidQuery)
}

func TestPatchApply(t *testing.T) {
	user := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	first := "Augusta"
	store.UserPatch{FirstName: &first}.Apply(user)
	assert.Equal(t, "Augusta", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.Equal(t, "ada@example.com", user.Email)

	owner := uuid.New()
	post := domain.NewPost("original text", owner, time.Now())
	tags := []string{"go"}
	likes := 3
	store.PostPatch{Tags: &tags, Likes: &likes}.Apply(post)
	tags[0] = "mutated"
	assert.Equal(t, []string{"go"}, post.Tags)
	assert.Equal(t, 3, post.Likes)
	assert.Equal(t, owner, post.Owner.ID)
	assert.Equal(t, "original text", post.Text)
}
