// Package tone rewrites generated text so its rhetorical certainty never
// exceeds what the computed confidence supports.
package tone
