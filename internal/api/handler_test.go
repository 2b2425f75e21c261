package api_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/api"
	"github.com/phrazzld/agora-api/internal/api/middleware"
	"github.com/phrazzld/agora-api/internal/api/policy"
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/mocks"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/platform/memory"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	users   *mocks.MockUserStore
	posts   *mocks.MockPostStore
	logs    *logger.TestLogBuffer
	ops     *opCounter
}

type opCounter struct {
	seen []string
}

func (c *opCounter) ObserveOperation(operation, kind, outcome string) {
	c.seen = append(c.seen, operation+"/"+kind+"/"+outcome)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := memory.New()
	logs, log := logger.NewTestLogger(t)
	catalog := i18n.MustDefault()

	ts := &testServer{
		users: &mocks.MockUserStore{Base: mem.Users()},
		posts: &mocks.MockPostStore{Base: mem.Posts()},
		logs:  logs,
		ops:   &opCounter{},
	}
	tokens := &mocks.MockJWTService{Token: "signed-token"}
	deps := service.Deps{
		Users:     ts.users,
		Posts:     ts.posts,
		Comments:  mem.Comments(),
		Catalog:   catalog,
		Tokens:    tokens,
		Passwords: &mocks.MockPasswordHasher{},
		Now:       func() time.Time { return fixedNow },
		Logger:    log,
	}
	h := api.NewHandler(api.HandlerDeps{
		Users:    service.NewUserService(deps),
		Posts:    service.NewPostService(deps),
		Comments: service.NewCommentService(deps),
		Catalog:  catalog,
		Policy:   policy.NewEngine(config.CacheConfig{MaxAgeSeconds: 300}, config.CompressionConfig{Level: 6}, nil, log),
		Observer: ts.ops,
		Logger:   log,
	})
	ts.handler = middleware.NewTraceMiddleware(log)(middleware.NewRequestContextMiddleware(tokens)(h))
	return ts
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (r gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

func (ts *testServer) do(t *testing.T, header http.Header, query string, vars map[string]any) (*httptest.ResponseRecorder, gqlResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, gqlResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	raw := rec.Body.Bytes()
	if rec.Header().Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		require.NoError(t, err)
		raw, err = io.ReadAll(zr)
		require.NoError(t, err)
	}
	var out gqlResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return rec, out
}

func hdr(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

const createUserMutation = `mutation ($input: UserInput!) {
  createUser(input: $input) { id firstName email gender registerDate }
}`

func (ts *testServer) createUser(t *testing.T, first, email string) string {
	t.Helper()
	_, res := ts.do(t, nil, createUserMutation, map[string]any{"input": map[string]any{
		"firstName": first, "lastName": "Lovelace", "email": email, "gender": "female",
	}})
	require.Empty(t, res.Errors)
	return res.Data["createUser"].(map[string]any)["id"].(string)
}

func (ts *testServer) createPost(t *testing.T, owner, text string, tags ...string) string {
	t.Helper()
	_, res := ts.do(t, nil, `mutation ($in: PostInput!) { createPost(input: $in) { id } }`,
		map[string]any{"in": map[string]any{"text": text, "owner": owner, "tags": tags}})
	require.Empty(t, res.Errors)
	return res.Data["createPost"].(map[string]any)["id"].(string)
}

func TestCreateAndFetchUserPerVersion(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createUser(t, "Ada", " Ada@Example.com ")

	query := `query ($id: ID!) { user(id: $id) { id email gender registerDate } }`

	tests := []struct {
		name       string
		header     http.Header
		wantGender string
		wantDate   string
	}{
		{"v1 english", hdr(), "female", "05/01/2024"},
		{"v1 french", hdr("Accept-Language", "fr-FR,en;q=0.8"), "femme", "01/05/2024"},
		{"v2 raw", hdr("X-API-Version", "2.0", "Accept-Language", "fr"), "female", "2024-05-01T09:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := ts.do(t, tt.header, query, map[string]any{"id": id})
			require.Empty(t, res.Errors)
			user := res.Data["user"].(map[string]any)
			assert.Equal(t, id, user["id"])
			assert.Equal(t, "ada@example.com", user["email"])
			assert.Equal(t, tt.wantGender, user["gender"])
			assert.Equal(t, tt.wantDate, user["registerDate"])
		})
	}
}

func TestUsersListOmitsEmailInV2(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "Ada", "ada@example.com")
	ts.createUser(t, "Grace", "grace@example.com")

	query := `{ users(limit: 1, sort: "registerDate_asc") { data { firstName email } pagination { totalRecords totalPages currentPage hasNextPage hasPreviousPage } } }`

	_, v1 := ts.do(t, nil, query, nil)
	require.Empty(t, v1.Errors)
	page := v1.Data["users"].(map[string]any)
	items := page["data"].([]any)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].(map[string]any)["email"])
	assert.Equal(t, map[string]any{
		"totalRecords": 2.0, "totalPages": 2.0, "currentPage": 1.0,
		"hasNextPage": true, "hasPreviousPage": false,
	}, page["pagination"])

	_, v2 := ts.do(t, hdr("X-API-Version", "2.0"), query, nil)
	require.Empty(t, v2.Errors)
	item := v2.Data["users"].(map[string]any)["data"].([]any)[0].(map[string]any)
	assert.Contains(t, item, "email")
	assert.Nil(t, item["email"])
}

func TestResponsePolicyHeaders(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createUser(t, "Ada", "ada@example.com")

	t.Run("successful query is cacheable", func(t *testing.T) {
		rec, res := ts.do(t, nil, `{ tags }`, nil)
		require.Empty(t, res.Errors)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
		assert.Equal(t, policy.VaryDimensions, rec.Header().Get("Vary"))
		assert.Equal(t, policy.ETag(rec.Body.Bytes()), rec.Header().Get("ETag"))
		assert.Len(t, rec.Header().Get("X-Trace-ID"), 32)
	})

	t.Run("same body same etag", func(t *testing.T) {
		first, _ := ts.do(t, nil, `{ tags }`, nil)
		second, _ := ts.do(t, nil, `{ tags }`, nil)
		assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
	})

	t.Run("failed query is no-store", func(t *testing.T) {
		rec, res := ts.do(t, nil, `query { user(id: "`+uuid.NewString()+`") { id } }`, nil)
		assert.Equal(t, "RESOURCE_NOT_FOUND", res.code())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Nil(t, res.Data)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Empty(t, rec.Header().Get("ETag"))
	})

	t.Run("mutation is no-store and uncompressed", func(t *testing.T) {
		rec, res := ts.do(t, hdr("Accept-Encoding", "gzip"),
			`mutation { deleteUser(id: "`+id+`") }`, nil)
		require.Empty(t, res.Errors)
		assert.Equal(t, id, res.Data["deleteUser"])
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})

	t.Run("query is compressed when accepted", func(t *testing.T) {
		rec, res := ts.do(t, hdr("Accept-Encoding", "br;q=0.5, gzip"), `{ apiInfo { version } }`, nil)
		require.Empty(t, res.Errors)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "1.0", res.Data["apiInfo"].(map[string]any)["version"])
	})
}

func TestErrorTaxonomy(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		header      http.Header
		query       string
		wantCode    string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "malformed id",
			query:       `{ user(id: "not-a-uuid") { id } }`,
			wantCode:    "PARAMS_NOT_VALID",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid user ID format",
		},
		{
			name:        "malformed id in french",
			header:      hdr("Accept-Language", "fr"),
			query:       `{ user(id: "not-a-uuid") { id } }`,
			wantCode:    "PARAMS_NOT_VALID",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Format d'ID utilisateur invalide",
		},
		{
			name:        "v2 errors stay english",
			header:      hdr("Accept-Language", "fr", "X-API-Version", "2.0"),
			query:       `{ user(id: "not-a-uuid") { id } }`,
			wantCode:    "PARAMS_NOT_VALID",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid user ID format",
		},
		{
			name:        "unknown root field",
			query:       `{ friends { id } }`,
			wantCode:    "PATH_NOT_FOUND",
			wantStatus:  http.StatusNotFound,
			wantMessage: "Invalid operation or path",
		},
		{
			name:       "mutation field in a query",
			query:      `query { deleteUser(id: "x") }`,
			wantCode:   "PATH_NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown subfield",
			query:      `{ users { data { password } } }`,
			wantCode:   "PARAMS_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "scalar with selection",
			query:      `{ tags { name } }`,
			wantCode:   "PARAMS_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "syntax error",
			query:      `{ users { `,
			wantCode:   "PARAMS_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid page",
			query:      `{ posts(page: 0) { data { id } } }`,
			wantCode:   "PARAMS_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "limit beyond the int range",
			query:       `{ users(limit: 9223372036854775807) { data { id } pagination { totalPages } } }`,
			wantCode:    "PARAMS_NOT_VALID",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Page must be at least 1 and limit between 1 and 2147483647",
		},
		{
			name:       "argument of the wrong type",
			query:      `{ posts(limit: "ten") { data { id } } }`,
			wantCode:   "PARAMS_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing required body fields",
			query:      `mutation { createUser(input: {firstName: "Ada"}) { id } }`,
			wantCode:   "BODY_NOT_VALID",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "comment on missing post",
			query:      `mutation { createComment(input: {message: "hi there", owner: "` + uuid.NewString() + `", post: "` + uuid.NewString() + `"}) { id } }`,
			wantCode:   "RESOURCE_NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:        "login for unknown email",
			query:       `mutation { login(email: "nobody@example.com") { token } }`,
			wantCode:    "SERVER_ERROR",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, res := ts.do(t, tt.header, tt.query, nil)
			require.Len(t, res.Errors, 1)
			assert.Nil(t, res.Data)
			assert.Equal(t, tt.wantCode, res.code())
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, res.Errors[0].Message)
			}
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestInternalFailureHidesCause(t *testing.T) {
	ts := newTestServer(t)
	ts.users.GetByIDFn = func(context.Context, uuid.UUID) (*domain.User, error) {
		return nil, errors.New(`pq: relation "users" password=hunter2`)
	}

	rec, res := ts.do(t, nil, `{ user(id: "`+uuid.NewString()+`") { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "SERVER_ERROR", res.code())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, ts.logs.String(), "hunter2")
	assert.Contains(t, ts.logs.String(), rec.Header().Get("X-Trace-ID"))
	assert.Contains(t, ts.ops.seen, "user/query/SERVER_ERROR")
}

func TestIdempotentCreatePost(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser(t, "Ada", "ada@example.com")

	mutation := `mutation ($in: PostInput!) { createPost(input: $in) { id text } }`
	vars := map[string]any{"in": map[string]any{
		"idempotencyKey": "k-1", "text": "first post text", "owner": owner,
	}}
	_, first := ts.do(t, nil, mutation, vars)
	require.Empty(t, first.Errors)

	vars["in"].(map[string]any)["text"] = "a different text"
	_, second := ts.do(t, nil, mutation, vars)
	require.Empty(t, second.Errors)

	assert.Equal(t, first.Data["createPost"], second.Data["createPost"])

	_, list := ts.do(t, nil, `{ posts { pagination { totalRecords } } }`, nil)
	assert.Equal(t, 1.0, list.Data["posts"].(map[string]any)["pagination"].(map[string]any)["totalRecords"])
}

func TestReferencesResolveOnlyWhenSelected(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser(t, "Ada", "ada@example.com")
	post := ts.createPost(t, owner, "hello agora", "go", "api")

	_, res := ts.do(t, nil, `mutation ($in: CommentInput!) { createComment(input: $in) { id } }`,
		map[string]any{"in": map[string]any{"message": "nice one", "owner": owner, "post": post}})
	require.Empty(t, res.Errors)

	calls := ts.users.Calls.Count("GetByID")
	_, res = ts.do(t, nil, `query ($p: ID!) { commentsByPost(postId: $p) { data { message owner post } } }`,
		map[string]any{"p": post})
	require.Empty(t, res.Errors)
	item := res.Data["commentsByPost"].(map[string]any)["data"].([]any)[0].(map[string]any)
	assert.Equal(t, owner, item["owner"])
	assert.Equal(t, post, item["post"])
	assert.Equal(t, calls, ts.users.Calls.Count("GetByID"), "unselected references are not fetched")

	_, res = ts.do(t, nil, `query ($p: ID!) { commentsByPost(postId: $p) { data { owner { firstName } post { text tags } } } }`,
		map[string]any{"p": post})
	require.Empty(t, res.Errors)
	item = res.Data["commentsByPost"].(map[string]any)["data"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"firstName": "Ada"}, item["owner"])
	assert.Equal(t, map[string]any{"text": "hello agora", "tags": []any{"go", "api"}}, item["post"])

	t.Run("v2 comment post is an identifier", func(t *testing.T) {
		_, res := ts.do(t, hdr("X-API-Version", "2.0"),
			`query ($p: ID!) { commentsByPost(postId: $p) { data { post } } }`, map[string]any{"p": post})
		require.Empty(t, res.Errors)
		item := res.Data["commentsByPost"].(map[string]any)["data"].([]any)[0].(map[string]any)
		assert.Equal(t, post, item["post"])

		_, res = ts.do(t, hdr("X-API-Version", "2.0"),
			`query ($p: ID!) { commentsByPost(postId: $p) { data { post { text } } } }`, map[string]any{"p": post})
		assert.Equal(t, "PARAMS_NOT_VALID", res.code())
	})
}

func TestAliasesFragmentsAndTypename(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser(t, "Ada", "ada@example.com")
	ts.createPost(t, owner, "tagged post", "go")

	query := `
query Overview {
  __typename
  all: tags
  info: apiInfo { ...Info }
  posts(filter: {tags: ["go"]}) { data { ... on Post { kind: __typename text } } }
}
fragment Info on ApiInfo { version deprecated }`

	rec, res := ts.do(t, nil, query, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, "Query", res.Data["__typename"])
	assert.Equal(t, []any{"go"}, res.Data["all"])
	assert.Equal(t, map[string]any{"version": "1.0", "deprecated": false}, res.Data["info"])
	item := res.Data["posts"].(map[string]any)["data"].([]any)[0]
	assert.Equal(t, map[string]any{"kind": "Post", "text": "tagged post"}, item)

	// Keys follow selection order.
	assert.Regexp(t, `^\{"data":\{"__typename":"Query","all":`, rec.Body.String())
}

func TestGetRequestWithVariables(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createUser(t, "Ada", "ada@example.com")

	values := url.Values{
		"query":     {`query ($id: ID!) { user(id: $id) { firstName } }`},
		"variables": {`{"id":"` + id + `"}`},
	}
	rec, res := ts.serve(t, httptest.NewRequest(http.MethodGet, "/?"+values.Encode(), nil))
	require.Empty(t, res.Errors)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"firstName": "Ada"}, res.Data["user"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	_, res := ts.do(t, nil, `mutation { createUser(input: {firstName: "Ada", lastName: "Lovelace", email: "ada@example.com", password: "correct horse"}) { id } }`, nil)
	require.Empty(t, res.Errors)

	_, res = ts.do(t, nil, `mutation { login(email: "ADA@example.com", password: "correct horse") { token user { firstName email registerDate } } }`, nil)
	require.Empty(t, res.Errors)
	payload := res.Data["login"].(map[string]any)
	assert.Equal(t, "signed-token", payload["token"])
	assert.Equal(t, map[string]any{"firstName": "Ada", "email": "ada@example.com", "registerDate": nil}, payload["user"])

	_, res = ts.do(t, nil, `mutation { login(email: "ada@example.com", password: "wrong") { token } }`, nil)
	assert.Equal(t, "SERVER_ERROR", res.code())
	assert.Equal(t, "loginFailed", res.Errors[0].Extensions["reason"])
}

func TestMalformedRequestBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"query":`)))
	req.Header.Set("Accept-Language", "fr")
	rec, res := ts.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARAMS_NOT_VALID", res.code())
	assert.Equal(t, "Requête invalide", res.Errors[0].Message)
}
