package shared

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phrazzld/agora-api/internal/apperr"
)

// Envelope is the response body of every operation. Data is null when the
// operation failed.
type Envelope struct {
	Data   any          `json:"data"`
	Errors []ErrorEntry `json:"errors,omitempty"`
}

// ErrorEntry is one element of the errors array.
type ErrorEntry struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

// DataEnvelope wraps the value of a resolved root field.
func DataEnvelope(field string, value any) Envelope {
	return Envelope{Data: map[string]any{field: value}}
}

// ErrorEnvelope renders a typed error. The cause is never serialized.
func ErrorEnvelope(err *apperr.Error) Envelope {
	return Envelope{
		Errors: []ErrorEntry{{
			Message:    err.Message,
			Extensions: err.Extensions(),
		}},
	}
}

// Failed reports whether the envelope carries errors.
func (e Envelope) Failed() bool {
	return len(e.Errors) > 0
}

// EncodeJSON serializes v without a trailing newline or HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := EncodeJSON(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode JSON response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.DebugContext(r.Context(), "failed to write response", "error", err)
	}
}
