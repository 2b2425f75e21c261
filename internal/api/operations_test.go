package api

import (
	"testing"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestParseOperation(t *testing.T) {
	t.Run("shorthand query", func(t *testing.T) {
		op, err := parseOperation(shared.GraphQLRequest{Query: `{ tags }`})
		require.NoError(t, err)
		assert.Equal(t, ast.Query, op.kind)
		require.Len(t, op.fields, 1)
		assert.Equal(t, "tags", op.fields[0].key())
	})

	t.Run("variables and defaults", func(t *testing.T) {
		op, err := parseOperation(shared.GraphQLRequest{
			Query: `query Page($page: Int = 2, $limit: Int) {
				users(page: $page, limit: $limit, filter: {firstName: "ad"}) { data { id } }
			}`,
			Variables: map[string]any{"limit": 5},
		})
		require.NoError(t, err)
		assert.Equal(t, "Page", op.name)
		users := op.fields[0]
		assert.Equal(t, int64(2), users.args["page"])
		assert.Equal(t, 5, users.args["limit"])
		assert.Equal(t, map[string]any{"firstName": "ad"}, users.args["filter"])
		assert.True(t, users.child("data").expanded())
	})

	t.Run("picks the named operation", func(t *testing.T) {
		doc := `query A { tags } mutation B { deletePost(id: "x") }`
		op, err := parseOperation(shared.GraphQLRequest{Query: doc, OperationName: "B"})
		require.NoError(t, err)
		assert.Equal(t, ast.Mutation, op.kind)
		assert.Equal(t, "deletePost", op.fields[0].name)

		_, err = parseOperation(shared.GraphQLRequest{Query: doc})
		assert.ErrorIs(t, err, errAmbiguousOperation)

		_, err = parseOperation(shared.GraphQLRequest{Query: doc, OperationName: "C"})
		assert.ErrorIs(t, err, errOperationNotFound)
	})

	t.Run("fragments are inlined", func(t *testing.T) {
		op, err := parseOperation(shared.GraphQLRequest{Query: `
			{ post(id: "x") { ...P owner { ... on User { firstName } } } }
			fragment P on Post { id text }`})
		require.NoError(t, err)
		post := op.fields[0]
		var names []string
		for _, f := range post.fields {
			names = append(names, f.name)
		}
		assert.Equal(t, []string{"id", "text", "owner"}, names)
		assert.True(t, post.selects("owner"))
		assert.False(t, post.selects("text"))
	})

	t.Run("aliases", func(t *testing.T) {
		op, err := parseOperation(shared.GraphQLRequest{Query: `{ a: tags b: tags }`})
		require.NoError(t, err)
		assert.Equal(t, "a", op.fields[0].key())
		assert.Equal(t, "b", op.fields[1].key())
		assert.Equal(t, "tags", op.fields[1].name)
	})

	failures := []struct {
		name  string
		query string
		want  error
	}{
		{"unknown fragment", `{ post(id: "x") { ...Missing } }`, errUnknownFragment},
		{"fragment cycle", `{ post(id: "x") { ...A } } fragment A on Post { ...B } fragment B on Post { ...A }`, errFragmentCycle},
		{"subscription", `subscription { tags }`, errSubscription},
		{"fragments only", `fragment A on Post { id }`, errNoOperation},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOperation(shared.GraphQLRequest{Query: tt.query})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("syntax error", func(t *testing.T) {
		_, err := parseOperation(shared.GraphQLRequest{Query: `{ users(`})
		assert.Error(t, err)
	})
}

func TestCheckSelection(t *testing.T) {
	parse := func(t *testing.T, q string) *selection {
		t.Helper()
		op, err := parseOperation(shared.GraphQLRequest{Query: q})
		require.NoError(t, err)
		return op.fields[0]
	}

	tests := []struct {
		name    string
		types   typeSet
		query   string
		wantErr error
	}{
		{"page", schemaTypes, `{ posts { data { id owner } pagination { totalPages } } }`, nil},
		{"expanded reference", schemaTypes, `{ posts { data { owner { firstName location { city } } } } }`, nil},
		{"typename", schemaTypes, `{ user(id: "x") { __typename id } }`, nil},
		{"unknown", schemaTypes, `{ user(id: "x") { passwordHash } }`, errUnknownField},
		{"object without selection", schemaTypes, `{ user(id: "x") { location } }`, errMissingSelection},
		{"scalar with selection", schemaTypes, `{ user(id: "x") { email { domain } } }`, errScalarSubfields},
		{"v2 comment post expanded", flatCommentPost, `{ commentsByPost(postId: "x") { data { post { id } } } }`, errScalarSubfields},
		{"v1 comment post expanded", schemaTypes, `{ commentsByPost(postId: "x") { data { post { id } } } }`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.query)
			def, ok := rootField(ast.Query, f.name)
			require.True(t, ok)
			err := tt.types.checkField(def, f, f.name)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, ok := rootField(ast.Query, "createUser")
	assert.False(t, ok)
	_, ok = rootField(ast.Mutation, "createUser")
	assert.True(t, ok)
}
