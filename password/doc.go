// Package password derives and verifies argon2id credentials and enforces the
// plaintext acceptance policy.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The cost parameters travel inside the encoding, so a [Config] change applies
// to new hashes only.
//
// # Worker pool
//
// argon2id is deliberately expensive. [Pool] runs it on a fixed number of
// goroutines; request handlers submit work and wait on the result or their
// context.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials.
//   - Log plaintext or hashes.
package password
