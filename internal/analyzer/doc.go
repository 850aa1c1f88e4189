// Package analyzer turns raw modality input into uniform sentiment readings.
//
// TextAnalyzer, VisualAnalyzer and AudioAnalyzer wrap their external
// collaborators (classifiers, a frame source, a pitch tracker) behind narrow
// interfaces. Every failure path is a named branch that returns the neutral
// zero-confidence fallback and records the branch in the result's Degraded
// field, so a broken modality never aborts the request.
//
// Cache builds expensive collaborator handles once per process.
package analyzer
