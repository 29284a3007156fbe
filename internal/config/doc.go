// Package config loads, normalizes, and validates lumen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and GEMINI_API_KEY. Always obtain settings through this
// package so downstream code receives expanded paths and canonical backend
// names.
package config
