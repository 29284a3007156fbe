// Package gemini adapts Google's Gemini API (google.golang.org/genai) to the
// textgen.Provider contract. It is normally configured as the fallback
// provider behind an OpenAI-compatible primary.
package gemini
