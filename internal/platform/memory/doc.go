// Package memory provides an in-process implementation of the store
// interfaces. It backs the "memory" store driver used for local development
// and for service and handler tests. All state lives behind one RWMutex.
package memory
