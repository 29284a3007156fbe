// Package llm provides an OpenAI-compatible chat completion client used as a
// text-generation provider (OpenRouter by default, or any endpoint speaking
// the same schema).
//
// # Configuration
//
// Requires api_key and model; base_url, referer, title, timeout, max_tokens
// and temperature are optional. Request-level MaxTokens, Temperature and Model
// override the configured values.
//
// # Failure Reporting
//
// Transport failures and non-2xx responses return errors. A 2xx response
// with no content (refusal, length cut-off) is reported as Success=false so
// the provider chain treats it like any other failure and falls back.
//
// # Retry Behaviour
//
// Retries cover HTTP 408/429/5xx, empty completions and network timeouts
// with exponential backoff. The default is a single attempt because
// cross-provider fallback is handled by textgen.Chain. Context cancellation
// aborts retries immediately.
package llm
