// Package synthesis builds the generation prompt for an analysis context,
// calls the configured text provider and parses the response into an
// insight.
//
// The expected response shape is a "PATTERN:" paragraph, a line holding
// "---", then one "- <practice id> | Rationale: <text>" line per
// recommendation. Parsing is tolerant of code fences, markdown emphasis and
// numbered lists. Labels resolve against the catalog by id first and fuzzy
// name match second; anything unresolved is dropped. When no pattern can be
// recovered the insight is marked Degraded instead of failing.
package synthesis
