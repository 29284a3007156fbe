// Package textutil compares short phrases by their content words.
//
// Labels produced by a text generator rarely match catalog names verbatim:
// word order changes, filler words appear, and ids are hyphenated. A
// Fingerprint reduces a phrase to its distinct content tokens so two phrases
// can be scored with cosine similarity regardless of order or punctuation.
package textutil
