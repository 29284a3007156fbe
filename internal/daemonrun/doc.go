// Package daemonrun is the process entry point behind lumend and
// "lumen serve": it sets up logging and tracing, builds the application,
// runs preflight checks and keeps the daemon alive until a signal arrives.
package daemonrun
