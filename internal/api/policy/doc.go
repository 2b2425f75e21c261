// Package policy decides the caching directives and the content coding of
// API responses. Both decisions depend on whether the operation is a query or
// a mutation and on whether it succeeded.
package policy
