// Package confidence scores how much the session history supports an insight
// and checks whether generated language claims more certainty than that.
//
// Compute turns session counts into a bounded score. Detect and Validate work
// from data-driven marker vocabularies so the wording tables can be audited and
// extended without touching the classification logic.
package confidence
