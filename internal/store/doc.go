// Package store defines the persistence primitives the resolvers depend on:
// count and find with a filter model, plus create, get, update and delete by
// identifier. Engines live under internal/platform.
package store
