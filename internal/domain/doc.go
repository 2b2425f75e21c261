// Package domain defines the core entities of the social graph (users, posts
// and comments), the weak references between them and the domain-level
// sentinel errors.
package domain
