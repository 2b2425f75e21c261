package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGraphQLRequest(t *testing.T) {
	get := func(values url.Values) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/?"+values.Encode(), nil)
	}
	post := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	tests := []struct {
		name    string
		req     *http.Request
		want    GraphQLRequest
		wantErr error
	}{
		{
			name: "post body",
			req:  post(`{"query":"query { tags }","operationName":"Tags","variables":{"page":2}}`),
			want: GraphQLRequest{
				Query:         "query { tags }",
				OperationName: "Tags",
				Variables:     map[string]any{"page": jsonNumber("2")},
			},
		},
		{
			name: "post without variables",
			req:  post(`{"query":"{ tags }"}`),
			want: GraphQLRequest{Query: "{ tags }", Variables: map[string]any{}},
		},
		{
			name: "get with variables",
			req: get(url.Values{
				"query":         {"query ($id: ID!) { user(id: $id) { id } }"},
				"operationName": {"User"},
				"variables":     {`{"id":"abc"}`},
				"ignored":       {"x"},
			}),
			want: GraphQLRequest{
				Query:         "query ($id: ID!) { user(id: $id) { id } }",
				OperationName: "User",
				Variables:     map[string]any{"id": "abc"},
			},
		},
		{
			name:    "get with malformed variables",
			req:     get(url.Values{"query": {"{ tags }"}, "variables": {"{nope"}}),
			wantErr: ErrMalformedVars,
		},
		{
			name:    "malformed body",
			req:     post(`{"query":`),
			wantErr: ErrMalformedBody,
		},
		{
			name:    "empty query",
			req:     post(`{"query":"   "}`),
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "unsupported method",
			req:     httptest.NewRequest(http.MethodPut, "/", nil),
			wantErr: ErrUnsupportedMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeGraphQLRequest(tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func jsonNumber(s string) any {
	return json.Number(s)
}
