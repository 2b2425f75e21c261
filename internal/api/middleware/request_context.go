package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/service/auth"
)

// Request headers read by the resolver.
const (
	HeaderAPIVersion     = "X-API-Version"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderLanguage       = "X-Language"
	HeaderAuthorization  = "Authorization"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// ResolveRequestContext derives the version, locale and identity of a request
// from its headers. It never fails: an unusable token leaves the request
// unauthenticated.
func ResolveRequestContext(ctx context.Context, h http.Header, verifier TokenVerifier) shared.RequestContext {
	rc := shared.RequestContext{
		APIVersion: shared.ParseAPIVersion(h.Get(HeaderAPIVersion)),
		Locale:     resolveLocale(h),
	}

	token, err := bearerToken(h.Get(HeaderAuthorization))
	if err != nil {
		if !errors.Is(err, auth.ErrMissingToken) {
			logger.FromContext(ctx).Debug("ignoring authorization header", redact.ErrorAttr(err))
		}
		return rc
	}
	if verifier == nil {
		return rc
	}

	claims, err := verifier.ValidateToken(ctx, token)
	if err == nil && claims == nil {
		err = auth.ErrInvalidToken
	}
	if err != nil {
		logger.FromContext(ctx).Debug("token rejected, continuing unauthenticated", redact.ErrorAttr(err))
		return rc
	}
	userID := claims.UserID
	rc.UserID = &userID
	rc.Email = claims.Email
	return rc
}

// resolveLocale reads Accept-Language, then X-Language: the text before the
// first comma, trimmed, cut to two letters and lowercased. Only supported
// locales are kept.
func resolveLocale(h http.Header) i18n.Locale {
	raw := h.Get(HeaderAcceptLanguage)
	if raw == "" {
		raw = h.Get(HeaderLanguage)
	}
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if len(raw) > 2 {
		raw = raw[:2]
	}
	loc, _ := i18n.ParseLocale(raw)
	return loc
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// NewRequestContextMiddleware stores the resolved RequestContext and tags the
// request logger with the version and locale.
func NewRequestContextMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rc := ResolveRequestContext(ctx, r.Header, verifier)

			attrs := []any{
				slog.String("api_version", string(rc.APIVersion)),
				slog.String("locale", string(rc.Locale)),
			}
			if rc.Authenticated() {
				attrs = append(attrs, slog.String("user_id", rc.UserID.String()))
			}
			ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(attrs...))
			ctx = shared.WithRequestContext(ctx, rc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
