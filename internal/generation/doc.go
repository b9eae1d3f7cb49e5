// Package generation talks to the text generation provider.
//
// GeminiClient makes exactly one request per Generate call, bounded by the
// configured timeout. Callers treat any error as "use the fallback"; every
// error wraps ErrGenerationFailed and never contains the API key.
package generation
