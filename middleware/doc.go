// Package middleware adapts the authgate engine to net/http pipelines.
//
// Authenticate is deliberately pass-through: it establishes identity when a
// valid token is present and otherwise leaves the request anonymous.
// Throttle is the outermost abuse filter and denies before any handler
// runs.
package middleware
