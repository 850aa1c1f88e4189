// Package preflight provides readiness checks for the binaries, directories
// and model services valence depends on.
//
// The CLI "valence status" command runs RunAll and renders the results.
// Each backend check is gated by its config: a backend set to "none" is
// reported as disabled rather than failing.
package preflight
