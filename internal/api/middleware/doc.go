// Package middleware holds the HTTP middleware that runs in front of the API
// handler: trace IDs, request context resolution and request metrics.
package middleware
