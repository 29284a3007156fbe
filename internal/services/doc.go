// Package services defines the error markers shared by lumen's external
// integrations, and hosts the text-generation provider adapters in its
// subpackages.
//
// Wrap tags failures with a marker so the API layer can map them onto status
// codes and retry hints without inspecting provider-specific error types.
package services
