// Package logging constructs slog loggers for the CLI.
//
// It provides a human-oriented console handler (timestamp, level label,
// component prefix, key=value attributes) and a JSON handler for structured
// output, selected via configuration. Attr helpers keep call sites terse and
// NewNop supplies a silent logger for tests.
package logging
