// Package authgate provides the authentication and abuse-control core for a
// web API: stateless HS256 bearer tokens with deny-list revocation, Redis
// fixed-window rate limiting with punitive cooldowns, and an asynchronous
// one-time-code verification workflow.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. All shared mutable state lives in Redis and is touched
// only through single-key atomic operations (SET NX EX, INCR, EXISTS, DEL),
// so correctness does not depend on in-process locking and holds across
// multiple engine instances.
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// the mail sink types, and context helpers. Token signing lives in the jwt
// subpackage; limiters and code persistence live under internal/ and are
// never exported.
//
// # What this package must NOT do
//
//   - Persist user or account records; those belong to the caller.
//   - Hash passwords or deliver mail; [MailSink] is the delivery boundary.
//   - Keep authoritative state in memory across requests.
//
// # Failure contract
//
// Credential and workflow failures are returned values (ErrUnauthenticated,
// ErrTooManyRequests, ErrCodeNotRequested, ErrCodeMismatch), never panics.
// Store-connectivity failures are wrapped infrastructure errors; the rate
// limiter fails closed on them.
package authgate
