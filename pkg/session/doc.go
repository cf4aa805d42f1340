// Package session provides server-side sessions addressed by a cookie.
//
// A Session is a bag of values with an expiry. Sessions are persisted by a
// [Store]; two are provided:
//   - [MemoryStore] keeps sessions in process memory (tests, single node)
//   - [RedisStore] keeps JSON-encoded sessions in Redis with a TTL
//
// Values stored in Redis round-trip through JSON, so numbers come back as
// float64 and structs as map[string]any. Use [Value] or [ValueOr] to read
// typed values.
package session
