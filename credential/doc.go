// Package credential owns user records: identities, their argon2id credentials
// and whether they require a second factor.
//
// Two backends implement [Store]: [MemoryStore] for single-process use and
// tests, and [PostgresStore] for durable storage. Both derive and verify
// credentials through a [Hasher], normally a *password.Pool, so no store lock
// is ever held while the KDF runs.
package credential
