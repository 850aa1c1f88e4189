// Package config loads, normalizes, and validates valence configuration data.
//
// It supplies defaults for every tunable of the analysis pipeline, expands
// user paths (including tilde shortcuts), reads TOML files, and honours
// environment fallbacks such as OPENROUTER_API_KEY and HF_TOKEN. Always obtain
// settings through this package so downstream code receives sanitized paths,
// canonical enum values, and clear validation errors.
package config
