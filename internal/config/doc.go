// Package config loads, normalizes, and validates artfetch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from --config, the XDG config directory,
// or a project-local artfetch.toml. The Config type centralizes every knob
// the CLI needs: artwork rendition, catalog endpoint, match thresholds,
// ledger gating defaults, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
