package rate

import "errors"

var (
	// ErrRedisUnavailable wraps transport-level Redis failures so callers
	// can distinguish infrastructure trouble from a genuine denial.
	ErrRedisUnavailable = errors.New("rate limiter redis unavailable")
)
