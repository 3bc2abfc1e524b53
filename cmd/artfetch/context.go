package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"artfetch/internal/batch"
	"artfetch/internal/config"
	"artfetch/internal/fetch"
	"artfetch/internal/identity"
	"artfetch/internal/itunes"
	"artfetch/internal/ledger"
	"artfetch/internal/logging"
	"artfetch/internal/resolve"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verboseFlag: verboseFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// fetchKit bundles the catalog-facing components shared by every command
// that resolves artwork.
type fetchKit struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  *fetch.Fetcher
	resolver *batch.Resolver
}

func (c *commandContext) newFetchKit() (*fetchKit, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent: cfg.Search.UserAgent,
		Throttle:  time.Duration(cfg.Search.ThrottleSeconds * float64(time.Second)),
		Logger:    logger,
	})
	client := itunes.NewClient(fetcher, cfg.Search.BaseURL, logger)

	resolver := batch.NewResolver(client, identity.FileTagSource{}, resolve.Options{
		Size:           cfg.Artwork.Size,
		Quality:        cfg.Artwork.Quality,
		FuzzyThreshold: cfg.Matching.FuzzyThreshold,
	}, logger)

	return &fetchKit{cfg: cfg, logger: logger, fetcher: fetcher, resolver: resolver}, nil
}

// environment is a fetchKit plus the ledger-backed batch runner.
type environment struct {
	*fetchKit
	ledger *ledger.Ledger
	runner *batch.Runner
}

// newEnvironment builds the run environment. ledgerDir is used when the
// config leaves ledger.dir unset. The returned cleanup releases the ledger
// lock.
func (c *commandContext) newEnvironment(opts batch.Options, override *identity.Identity, ledgerDir string) (*environment, func(), error) {
	kit, err := c.newFetchKit()
	if err != nil {
		return nil, nil, err
	}

	if kit.cfg.Ledger.Dir != "" {
		ledgerDir = kit.cfg.Ledger.Dir
	}
	led, err := ledger.Open(ledgerDir)
	if err != nil {
		return nil, nil, err
	}

	resolver := kit.resolver
	if override != nil {
		resolver = resolver.WithOverride(*override)
	}
	runner := batch.NewRunner(kit.cfg, resolver, kit.fetcher, led, kit.logger, opts)

	env := &environment{fetchKit: kit, ledger: led, runner: runner}
	return env, func() { led.Close() }, nil
}
