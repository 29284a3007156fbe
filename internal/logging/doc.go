// Package logging assembles structured slog loggers used across lumen.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers can tag log
// lines with correlation and user identifiers. Warnings emitted through
// WarnWithContext always carry event_type, error_hint and impact so operators
// can filter degraded runs without reading prose.
package logging
