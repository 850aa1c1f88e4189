// Package pipeline runs one analysis request end to end.
//
// Analyze validates the input, extracts audio and transcript, runs the text,
// visual and audio analyzers (concurrently by default), fuses their readings
// and assembles a Report. Only validation failures are fatal; every later
// failure degrades the affected modality and the request still produces a
// report.
//
// Progress is reported through a ProgressSink with strictly increasing
// fractions ending at 1.0.
package pipeline
