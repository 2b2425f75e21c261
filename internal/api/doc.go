// Package api executes the operations clients send to the API root. It parses
// the operation document, checks the selection against the fixed object
// types, dispatches on the negotiated API version, calls the entity services
// and projects their results, and hands the serialized envelope to the
// response policy.
package api
