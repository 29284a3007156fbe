// Package main hosts the lumen CLI entrypoint and command graph.
//
// The Cobra command tree opens the configured lineage store and guidance
// cache directly, so explain, history and verify work whether or not lumend
// is running. The serve command runs the daemon in the foreground, and
// status asks a running daemon for its health over HTTP. Scoring and tone
// commands are pure and never load configuration.
//
// Keep this package thin: behavior belongs in internal packages, and commands
// here only resolve configuration, call into them, and render the result.
package main
