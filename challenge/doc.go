// Package challenge holds pending two-factor challenges: at most one per
// identity, each bound to a login attempt id and a six digit code, each
// expiring after a fixed TTL.
//
// [Store.Consume] is the only way a challenge is accepted. It compares and
// deletes in one step so a code can be redeemed exactly once.
package challenge
