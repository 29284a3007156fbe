// Package app builds the guidance stack from configuration: text generation
// providers and their fallback chain, the lineage repository, the guidance
// cache backend, the session source and the guidance service on top of them.
// Both the daemon and the CLI construct their components through Build.
package app
