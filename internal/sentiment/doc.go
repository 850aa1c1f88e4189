// Package sentiment defines the shared valence vocabulary used by every
// analyzer and by the fusion engine.
//
// Scale is the single definition of the mapping between the discrete
// three-way Sentiment and the numeric [1,5] score, plus the threshold rule
// that derives a Sentiment from a score. Analyzers and fusion receive the
// same Scale value; nothing else re-derives the thresholds.
//
// ModalityResult and FusionResult are immutable values created per request.
package sentiment
