// Package llm provides an OpenAI-compatible chat client used as a transcript
// sentiment classifier.
//
// The client sends the transcript with a prompt requesting JSON of the form
// {"label": ..., "probability": ...}. Responses are decoded tolerantly: code
// fences, surrounding prose, delta-shaped choices, legacy text choices and
// tool-call arguments are all accepted.
//
// Each call makes exactly one HTTP request. Failures are returned to the
// caller, which takes its own fallback branch.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.ClassifySentiment: label plus probability for a transcript.
// Client.HealthCheck: verify API key and model availability.
package llm
