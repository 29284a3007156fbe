// Package api defines wire-format types and thin services for the HTTP API.
//
// ExplainService fronts the lineage tracker for the explain, history and
// verify endpoints; GuidanceService fronts the guidance pipeline. ErrorStatus
// maps error kinds onto status codes: validation is 400, missing records are
// 404 and unavailable generation is 503 with retryable set.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
package api
