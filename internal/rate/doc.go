// Package rate implements the Redis-backed request limiters used by the
// authgate engine: a single-shot cooldown gate and a fixed-window counter
// with a punitive block period.
//
// Both primitives rely on single-key atomic Redis operations (SET NX EX,
// INCR). There is deliberately no in-process locking here: a local mutex
// cannot coordinate across instances, and the store operations are already
// race-free on their own.
package rate
