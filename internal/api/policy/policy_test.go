package policy

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		opName string
		want   Kind
	}{
		{"query keyword", "query Users { users { data { id } } }", "", Query},
		{"shorthand", "{ tags }", "", Query},
		{"leading whitespace", "\n  mutation { deleteUser(id: \"x\") }", "", Mutation},
		{"mutation keyword", "mutation CreateUser { createUser(input: {}) { id } }", "", Mutation},
		{"uppercase keyword", "MUTATION { deletePost(id: \"x\") }", "", Mutation},
		{"operation name mentions mutation", "{ deletePost(id: \"x\") }", "DeletePostMutation", Mutation},
		{"query keyword wins over name", "query { tags }", "NotAMutation", Query},
		{"empty", "", "", Query},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query, tt.opName))
		})
	}
}

func TestETag(t *testing.T) {
	assert.Equal(t, `"0"`, ETag(nil))
	assert.Equal(t, `"17862"`, ETag([]byte("abc")))
	assert.Equal(t, `"-23e8220c"`, ETag([]byte("comments")))
	assert.Equal(t, ETag([]byte("hello agora")), ETag([]byte("hello agora")))
	assert.NotEqual(t, ETag([]byte(`{"data":{"tags":["go"]}}`)), ETag([]byte(`{"data":{"tags":["og"]}}`)))
}

func TestParseAcceptEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   []Preference
	}{
		{"", nil},
		{"gzip", []Preference{{"gzip", 1}}},
		{"gzip;q=0.5, br", []Preference{{"br", 1}, {"gzip", 0.5}}},
		{"deflate, gzip, br", []Preference{{"deflate", 1}, {"gzip", 1}, {"br", 1}}},
		{"br;q=abc, gzip;q=0.8", []Preference{{"br", 1}, {"gzip", 0.8}}},
		{"GZIP ; q=0.1 ,, identity;q=0", []Preference{{"gzip", 0.1}, {"identity", 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAcceptEncoding(tt.header))
		})
	}
}

func TestSelectCoding(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"br", "br"},
		{"gzip;q=0.5, br;q=0.9", "br"},
		{"*", "gzip"},
		{"deflate", "deflate"},
		{"compress, zstd", ""},
		{"br;q=0, gzip", "gzip"},
		{"identity, gzip;q=0.5", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, selectCoding(ParseAcceptEncoding(tt.header)))
		})
	}
}

type countingObserver struct {
	offered []string
	applied []string
}

func (c *countingObserver) ObserveAcceptEncoding(codings []string) {
	c.offered = append(c.offered, codings...)
}
func (c *countingObserver) ObserveContentEncoding(coding string) {
	c.applied = append(c.applied, coding)
}

func decode(t *testing.T, coding string, body []byte) []byte {
	t.Helper()
	var r io.Reader
	switch coding {
	case CodingBrotli:
		r = brotli.NewReader(bytes.NewReader(body))
	case CodingGzip:
		gz, err := gzip.NewReader(bytes.NewReader(body))
		require.NoError(t, err)
		r = gz
	case CodingDeflate:
		r = flate.NewReader(bytes.NewReader(body))
	default:
		return body
	}
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestEngineWrite(t *testing.T) {
	payload := []byte(`{"data":{"tags":["` + strings.Repeat("golang", 50) + `"]}}`)

	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		outcome        Outcome
		minBytes       int
		wantCache      string
		wantETag       bool
		wantEncoding   string
	}{
		{
			name:           "successful query with brotli",
			method:         http.MethodPost,
			acceptEncoding: "gzip;q=0.8, br",
			outcome:        Outcome{Kind: Query, Success: true},
			wantCache:      "public, max-age=300",
			wantETag:       true,
			wantEncoding:   "br",
		},
		{
			name:           "successful query with gzip",
			method:         http.MethodGet,
			acceptEncoding: "gzip",
			outcome:        Outcome{Kind: Query, Success: true},
			wantCache:      "public, max-age=300",
			wantETag:       true,
			wantEncoding:   "gzip",
		},
		{
			name:           "successful query with deflate",
			method:         http.MethodPost,
			acceptEncoding: "deflate",
			outcome:        Outcome{Kind: Query, Success: true},
			wantCache:      "public, max-age=300",
			wantETag:       true,
			wantEncoding:   "deflate",
		},
		{
			name:           "below min bytes",
			method:         http.MethodPost,
			acceptEncoding: "gzip",
			outcome:        Outcome{Kind: Query, Success: true},
			minBytes:       1 << 20,
			wantCache:      "public, max-age=300",
			wantETag:       true,
		},
		{
			name:           "failed query",
			method:         http.MethodPost,
			acceptEncoding: "gzip",
			outcome:        Outcome{Kind: Query, Success: false, Status: http.StatusNotFound},
			wantCache:      NoStore,
		},
		{
			name:           "mutation",
			method:         http.MethodPost,
			acceptEncoding: "br, gzip",
			outcome:        Outcome{Kind: Mutation, Success: true},
			wantCache:      NoStore,
		},
		{
			name:           "options",
			method:         http.MethodOptions,
			acceptEncoding: "gzip",
			outcome:        Outcome{Kind: Query, Success: true},
			wantCache:      "public, max-age=300",
			wantETag:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &countingObserver{}
			engine := NewEngine(config.CacheConfig{}, config.CompressionConfig{MinBytes: tt.minBytes}, observer, nil)

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			rec := httptest.NewRecorder()
			engine.Write(rec, req, tt.outcome, payload)

			wantStatus := tt.outcome.Status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			assert.Equal(t, wantStatus, rec.Code)
			assert.Equal(t, tt.wantCache, rec.Header().Get(HeaderCacheControl))
			assert.Equal(t, tt.wantEncoding, rec.Header().Get(HeaderContentEncoding))
			if tt.wantETag {
				assert.Equal(t, ETag(payload), rec.Header().Get(HeaderETag))
				assert.Equal(t, VaryDimensions, rec.Header().Get(HeaderVary))
			} else {
				assert.Empty(t, rec.Header().Get(HeaderETag))
				assert.Empty(t, rec.Header().Get(HeaderVary))
			}

			assert.Equal(t, payload, decode(t, tt.wantEncoding, rec.Body.Bytes()))
			assert.NotEmpty(t, observer.offered, "preferences are recorded regardless of eligibility")
			want := tt.wantEncoding
			if want == "" {
				want = CodingIdentity
			}
			assert.Equal(t, []string{want}, observer.applied)
		})
	}
}

func TestEngineUsesConfiguredMaxAge(t *testing.T) {
	engine := NewEngine(config.CacheConfig{MaxAgeSeconds: 60}, config.CompressionConfig{Level: 42}, nil, nil)
	assert.Equal(t, DefaultCompressionLevel, engine.level)

	rec := httptest.NewRecorder()
	engine.Write(rec, httptest.NewRequest(http.MethodPost, "/", nil), Outcome{Kind: Query, Success: true}, []byte(`{}`))
	assert.Equal(t, "public, max-age=60", rec.Header().Get(HeaderCacheControl))
	assert.Equal(t, "2", rec.Header().Get("Content-Length"))
}
