// Package jwt mints and verifies session tokens: signed JWTs whose subject is
// the user identity and whose exp bounds the session.
//
// HS256 with a static secret is the default. Ed25519 is available when the
// verifying side should not hold signing material.
package jwt
