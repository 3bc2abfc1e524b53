package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"artfetch/internal/textutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Artwork controls the requested artwork rendition and output naming.
type Artwork struct {
	// Size is the pixel edge requested from the catalog CDN.
	Size int `toml:"size"`
	// Quality is the JPEG quality token; 0 selects the CDN's "bb" default.
	Quality int `toml:"quality"`
	// OutputFilename is the file written into each release folder.
	OutputFilename string `toml:"output_filename"`
	// FallbackSuffix is inserted before the extension when a match is
	// below exact confidence.
	FallbackSuffix string `toml:"fallback_suffix"`
	Overwrite      bool   `toml:"overwrite"`
}

// Search contains catalog endpoint settings.
type Search struct {
	BaseURL         string  `toml:"base_url"`
	UserAgent       string  `toml:"user_agent"`
	ThrottleSeconds float64 `toml:"throttle_seconds"`
}

// Matching contains match-classification thresholds.
type Matching struct {
	// FuzzyThreshold is the 0-100 token-set score required for a fuzzy match.
	FuzzyThreshold int `toml:"fuzzy_threshold"`
}

// Ledger contains outcome-log location and rerun gating defaults.
type Ledger struct {
	// Dir holds the three outcome logs. Empty means the batch root
	// (directory mode) or the working directory (list mode).
	Dir           string `toml:"dir"`
	IgnoreSuccess bool   `toml:"ignore_success"`
	RetryFailed   bool   `toml:"retry_failed"`
	RetryFallback bool   `toml:"retry_fallback"`
	OnlyFailed    bool   `toml:"only_failed"`
	OnlyFallback  bool   `toml:"only_fallback"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for artfetch.
//
// Configuration sections by subsystem:
//   - Artwork: requested rendition and output file naming
//   - Search: catalog endpoint, user agent, politeness throttle
//   - Matching: fuzzy match threshold
//   - Ledger: outcome log directory and rerun gating defaults
//   - Logging: log format and level
type Config struct {
	Artwork  Artwork  `toml:"artwork"`
	Search   Search   `toml:"search"`
	Matching Matching `toml:"matching"`
	Ledger   Ledger   `toml:"ledger"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/artfetch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("artfetch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Artwork.Size <= 0 {
		return errors.New("artwork.size must be positive")
	}
	if c.Artwork.Quality < 0 || c.Artwork.Quality > 100 {
		return errors.New("artwork.quality must be between 0 and 100")
	}
	if c.Artwork.OutputFilename == "" {
		return errors.New("artwork.output_filename must be set")
	}
	if strings.ContainsAny(c.Artwork.OutputFilename, `/\`) {
		return errors.New("artwork.output_filename must be a bare filename")
	}
	if sanitized := textutil.SanitizeFileName(c.Artwork.OutputFilename); sanitized != c.Artwork.OutputFilename {
		return fmt.Errorf("artwork.output_filename contains unsafe characters: %q", c.Artwork.OutputFilename)
	}
	if c.Search.ThrottleSeconds < 0 {
		return errors.New("search.throttle_seconds must not be negative")
	}
	parsed, err := url.Parse(c.Search.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("search.base_url is not a valid URL: %q", c.Search.BaseURL)
	}
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return errors.New("matching.fuzzy_threshold must be between 0 and 100")
	}
	if c.Ledger.OnlyFailed && c.Ledger.OnlyFallback {
		return errors.New("ledger.only_failed and ledger.only_fallback are mutually exclusive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) normalize() error {
	c.Search.BaseURL = strings.TrimRight(strings.TrimSpace(c.Search.BaseURL), "/")
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	c.Search.UserAgent = strings.TrimSpace(c.Search.UserAgent)
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = defaultUserAgent
	}
	c.Artwork.OutputFilename = strings.TrimSpace(c.Artwork.OutputFilename)
	c.Artwork.FallbackSuffix = strings.TrimSpace(c.Artwork.FallbackSuffix)
	if dir := strings.TrimSpace(c.Ledger.Dir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("ledger.dir: %w", err)
		}
		c.Ledger.Dir = expanded
	} else {
		c.Ledger.Dir = ""
	}
	c.Logging.Format = strings.TrimSpace(c.Logging.Format)
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
