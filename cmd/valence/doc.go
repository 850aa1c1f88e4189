// Package main hosts the valence CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into analysis
// requests against a single shared pipeline, preflight checks of the media
// tools and model backends, and configuration scaffolding. Configuration
// resolution, .env loading and logger setup live here so subcommands only
// deal with presentation.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
