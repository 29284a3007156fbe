// Package guidancecache holds the most recent guidance insight keyed by the
// analysis context hash.
//
// There is one entry. Put replaces it wholesale; Get returns it only when the
// stored hash matches and the entry is within the TTL (24 hours by default).
// Backends are memory, a JSON file written by locked temp-file rename, and a
// single Redis key.
package guidancecache
