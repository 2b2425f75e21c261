// Package service contains the entity resolvers behind every API operation.
//
// Resolvers validate identifiers and inputs before touching a store, apply
// idempotent creation, resolve weak references on request and translate every
// failure into one of the apperr kinds. Messages are rendered in the locale
// carried by the context (see i18n.WithLocale).
package service
