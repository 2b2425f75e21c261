// Package i18n holds the immutable translation catalog used to localize
// messages, enumerated values, dates and validation failures. A Catalog is
// built once at startup and shared read-only by every request.
package i18n
