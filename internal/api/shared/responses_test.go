package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes(t *testing.T) {
	body, err := EncodeJSON(DataEnvelope("tags", []string{"a", "b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"tags":["a","b"]}}`, string(body))

	appErr := apperr.Wrap(apperr.ResourceNotFound, "User not found",
		errors.New("sql: no rows in result set"), apperr.Details{"resource": "user"})
	env := ErrorEnvelope(appErr)
	assert.True(t, env.Failed())

	body, err = EncodeJSON(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"errors":[{"message":"User not found",`+
		`"extensions":{"code":"RESOURCE_NOT_FOUND","resource":"user"}}]}`, string(body))
	assert.NotContains(t, string(body), "no rows")
}

func TestEncodeJSONKeepsHTML(t *testing.T) {
	body, err := EncodeJSON(map[string]string{"link": "https://x.test/?a=1&b=<2>"})
	require.NoError(t, err)
	assert.Equal(t, `{"link":"https://x.test/?a=1&b=<2>"}`, string(body))
}

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	RespondWithJSON(rec, req, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"status":"ok"}`, rec.Body.String())
}
