// Package analysis aggregates normalized sessions, the practice stack and
// pending insights into the context handed to synthesis, and fingerprints it
// for caching.
package analysis
