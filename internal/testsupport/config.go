package testsupport

import (
	"path/filepath"
	"testing"

	"artfetch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp ledger directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Ledger.Dir = filepath.Join(t.TempDir(), "ledger")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithFuzzyThreshold overrides the fuzzy match threshold on the test config.
func WithFuzzyThreshold(threshold int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.FuzzyThreshold = threshold
	}
}

// WithBaseURL points catalog searches at a test server.
func WithBaseURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Search.BaseURL = baseURL
	}
}
