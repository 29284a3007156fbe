// Package textgen defines the provider-neutral text completion contract and
// the primary/fallback Chain used by insight synthesis.
//
// A Provider is a black box: it receives a system prompt plus conversation
// messages and returns text. Chain tries the primary, then the fallback once,
// and reports ErrGenerationUnavailable (wrapped in *UnavailableError) when
// both fail. Context cancellation is surfaced directly and never triggers the
// fallback.
package textgen
