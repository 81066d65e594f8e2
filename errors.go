package authgate

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnauthenticated covers every credential failure. It is a returned
	// value, never a panic: the boundary layer decides whether the route
	// required credentials at all.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTooManyRequests is the user-facing refusal from the rate limiter.
	ErrTooManyRequests = errors.New("too many requests, try again later")
	// ErrCodeNotRequested reports a confirmation attempt with no active
	// verification code for the address.
	ErrCodeNotRequested = errors.New("request a verification code first")
	// ErrCodeMismatch reports a submitted code that does not match the
	// stored one. The stored code stays in place; the attempt is retriable.
	ErrCodeMismatch = errors.New("incorrect verification code")
)
