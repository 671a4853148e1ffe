// Package middleware adapts Engine.VerifyToken to net/http.
//
// [Guard] reads the session cookie or a Bearer header, rejects requests whose
// token is malformed, expired or revoked, and stores the verified
// [authservice.SessionInfo] in the request context for [SessionFromContext].
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
package middleware
