// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides type-safe
// access to the settings needed by the server, the store engines, the token
// service and the response policy engine.
package config
