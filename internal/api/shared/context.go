package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/i18n"
)

// ContextKey is the type of the context keys owned by this package.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// RequestContextKey is the key for the resolved RequestContext
	RequestContextKey ContextKey = "requestContext"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// APIVersion is the wire version negotiated through X-API-Version.
type APIVersion string

// Supported API versions.
const (
	V1 APIVersion = "1.0"
	V2 APIVersion = "2.0"
)

// ParseAPIVersion returns V2 for "2.0" and V1 for anything else.
func ParseAPIVersion(raw string) APIVersion {
	if APIVersion(raw) == V2 {
		return V2
	}
	return V1
}

// RequestContext is derived once per request from its headers and never
// mutated afterwards.
type RequestContext struct {
	APIVersion APIVersion
	Locale     i18n.Locale
	// UserID and Email are set only for requests carrying a valid token.
	UserID *uuid.UUID
	Email  string
}

// Authenticated reports whether the request carried a valid token.
func (rc RequestContext) Authenticated() bool {
	return rc.UserID != nil
}

// DefaultRequestContext is used when no resolver ran.
func DefaultRequestContext() RequestContext {
	return RequestContext{APIVersion: V1, Locale: i18n.DefaultLocale}
}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, RequestContextKey, rc)
}

// GetRequestContext returns the RequestContext in ctx, or the default one.
func GetRequestContext(ctx context.Context) RequestContext {
	if rc, ok := ctx.Value(RequestContextKey).(RequestContext); ok {
		return rc
	}
	return DefaultRequestContext()
}

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID adds the given trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters from crypto/rand, or a
// time-based ID if the random source fails.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	id := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(id[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(id[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(id[12:16], uint32(now.Unix()))
	return hex.EncodeToString(id)
}
