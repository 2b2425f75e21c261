package i18n

import "context"

type localeKey struct{}

// WithLocale returns a context carrying the locale used for messages.
func WithLocale(ctx context.Context, loc Locale) context.Context {
	return context.WithValue(ctx, localeKey{}, loc)
}

// FromContext returns the message locale in ctx, or DefaultLocale.
func FromContext(ctx context.Context) Locale {
	if loc, ok := ctx.Value(localeKey{}).(Locale); ok {
		return loc
	}
	return DefaultLocale
}
