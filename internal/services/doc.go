// Package services defines shared utilities consumed by the pipeline stages
// and the external model integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and modality names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable (input errors vs tool failures) as they cross packages.
//   - Subpackages wrapping each model backend (WhisperX, sentiment and emotion
//     HTTP services, the vision model, and the chat LLM).
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across the pipeline.
package services
