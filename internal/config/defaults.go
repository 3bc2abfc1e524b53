package config

const (
	defaultArtSize         = 9999
	defaultArtQuality      = 100
	defaultOutputFilename  = "xfolder.jpg"
	defaultFallbackSuffix  = "_fallback"
	defaultSearchBaseURL   = "https://itunes.apple.com"
	defaultThrottleSeconds = 1.0
	defaultFuzzyThreshold  = 90
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// defaultUserAgent is a realistic browser identity; the catalog service
	// rejects bare default clients.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.55 Safari/537.36"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Artwork: Artwork{
			Size:           defaultArtSize,
			Quality:        defaultArtQuality,
			OutputFilename: defaultOutputFilename,
			FallbackSuffix: defaultFallbackSuffix,
		},
		Search: Search{
			BaseURL:         defaultSearchBaseURL,
			UserAgent:       defaultUserAgent,
			ThrottleSeconds: defaultThrottleSeconds,
		},
		Matching: Matching{
			FuzzyThreshold: defaultFuzzyThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
