// Package preflight provides readiness checks for the filesystem paths and
// text generation providers lumen depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs every failure before serving.
//   - The CLI "lumen doctor" command prints the same results as a table.
//
// Provider checks send a one-word prompt and are skipped when no provider is
// configured.
package preflight
