// Package guidance resolves a user's analysis context into calibrated
// guidance.
//
// A call first consults the guidance cache. On a miss the context is scored,
// an insight is synthesized, every generated sentence is checked against the
// score and re-toned where it overclaims, lineage is recorded and the result
// is cached. Concurrent calls for the same context are coalesced. Lineage and
// cache writes are best-effort; their failures are logged and counted but
// never fail the call.
package guidance
