// Package internal contains helpers private to the service module.
//
// # Sub-packages
//
//   - config: process configuration (defaults, TOML file, env, flags)
//   - flows: protocol runners behind every Engine operation
//   - httpapi: JSON-over-HTTP surface
//   - logging: structured logging interface over log/slog
package internal
