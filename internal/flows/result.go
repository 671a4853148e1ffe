package flows

// Failure classifies why a flow did not complete.
type Failure int

const (
	FailureNone Failure = iota
	// FailureInvalidInput means a value had the wrong shape.
	FailureInvalidInput
	// FailureConflict means the identity is already registered.
	FailureConflict
	// FailureUnauthorized covers unknown users, wrong credentials, failed
	// challenges and invalid or revoked tokens.
	FailureUnauthorized
	// FailureUnexpected is an infrastructure fault.
	FailureUnexpected
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureInvalidInput:
		return "invalid_input"
	case FailureConflict:
		return "conflict"
	case FailureUnauthorized:
		return "unauthorized"
	case FailureUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Outcome is embedded in every flow result. Reason is a stable, log-safe tag
// for the specific cause; Err carries the underlying error.
type Outcome struct {
	Failure Failure
	Reason  string
	Err     error
}

func (o Outcome) OK() bool {
	return o.Failure == FailureNone
}

func fail(kind Failure, reason string, err error) Outcome {
	return Outcome{Failure: kind, Reason: reason, Err: err}
}
