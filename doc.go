// Package authservice is an email and password authentication engine with
// optional email-delivered second factor and revocable JWT sessions.
//
// Build an [Engine] once at startup with [New] and the With* options, then
// call its operations from request handlers:
//
//	engine, err := authservice.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithDatabase(db).
//		Build()
//
// Every operation returns an error that matches exactly one of
// [ErrValidation], [ErrConflict], [ErrUnauthorized] or [ErrUnexpected] under
// errors.Is. Unexpected errors are logged in full; the others only carry a
// short reason tag in debug logs.
//
// Without WithRedis and WithDatabase the engine keeps users, pending
// challenges and revoked tokens in process memory.
package authservice
