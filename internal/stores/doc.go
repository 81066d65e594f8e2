// Package stores contains the Redis persistence used by the verification
// code workflow. Records are plain string values with a per-key TTL; the
// store never keeps authoritative state in process memory.
package stores
