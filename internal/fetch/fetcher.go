package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"artfetch/internal/logging"
)

const (
	maxRetries      = 5
	escalationDelay = 5 * time.Second
)

func isThrottled(status int) bool {
	return status == http.StatusForbidden || status == http.StatusTooManyRequests
}

// Options configures a Fetcher.
type Options struct {
	UserAgent string
	// Throttle is the configured base pause between independent requests.
	Throttle time.Duration
	Logger   *slog.Logger
}

// Fetcher performs GET requests with bounded retry and throttle escalation.
// It owns the process-wide rate-limit state; construct one per run and share
// it across every request in the batch. Not safe for concurrent use, by
// contract execution is strictly serial.
type Fetcher struct {
	client    *http.Client
	userAgent string
	throttle  time.Duration
	logger    *slog.Logger

	escalated      bool
	rateLimitDelay time.Duration

	sleep func(time.Duration)
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		client:    &http.Client{Timeout: 60 * time.Second},
		userAgent: opts.UserAgent,
		throttle:  opts.Throttle,
		logger:    logging.WithComponent(logger, "fetcher"),
		sleep:     time.Sleep,
	}
}

// CurrentDelay returns the effective pause to honor between independent
// requests: the larger of the configured throttle and any escalated delay.
func (f *Fetcher) CurrentDelay() time.Duration {
	if f.rateLimitDelay > f.throttle {
		return f.rateLimitDelay
	}
	return f.throttle
}

// Escalated reports whether the service has throttled this process already.
func (f *Fetcher) Escalated() bool {
	return f.escalated
}

// Fetch performs a GET request against rawURL and returns the response body.
// Throttled responses escalate once and then fail with ErrRateLimited; other
// HTTP error statuses retry with exponential backoff before returning a
// *StatusError. Transport-level errors are returned without retry.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := 0
	for {
		body, status, statusText, err := f.do(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if status == http.StatusOK {
			return body, nil
		}

		if isThrottled(status) {
			if f.enterRateLimitMode(rawURL, status) {
				continue
			}
			return nil, fmt.Errorf("HTTP %d for %s: %w", status, rawURL, ErrRateLimited)
		}

		attempts++
		if attempts <= maxRetries {
			wait := backoffDelay(f.CurrentDelay(), attempts)
			f.logger.Warn("request failed, retrying",
				logging.String("url", rawURL),
				logging.Int("status", status),
				logging.Int("attempt", attempts),
				logging.Duration("wait", wait))
			f.sleep(wait)
			continue
		}

		return nil, &StatusError{URL: rawURL, StatusCode: status, Status: statusText}
	}
}

// enterRateLimitMode handles first-time throttling: sleep five seconds, raise
// the inter-request delay floor, and signal the caller to retry once. Returns
// false when escalation already happened, meaning the condition is fatal.
func (f *Fetcher) enterRateLimitMode(rawURL string, status int) bool {
	if f.escalated {
		return false
	}
	f.escalated = true
	if f.rateLimitDelay < escalationDelay {
		f.rateLimitDelay = escalationDelay
	}

	host := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	f.logger.Warn("service throttled responses, enabling inter-request delay",
		logging.String("host", host),
		logging.Int("status", status),
		logging.Duration("delay", escalationDelay))

	f.sleep(escalationDelay)
	return true
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	requestStart := time.Now()
	resp, err := f.client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, 0, "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, resp.Status, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", fmt.Errorf("read response body: %w", err)
	}

	f.logger.Debug("request complete",
		logging.String("url", rawURL),
		logging.Int("bytes", len(body)),
		logging.Duration("latency", latency))
	return body, resp.StatusCode, resp.Status, nil
}

// backoffDelay computes max(currentDelay, 1s) * 2^(attempt-1).
func backoffDelay(currentDelay time.Duration, attempt int) time.Duration {
	base := currentDelay
	if base < time.Second {
		base = time.Second
	}
	return base << (attempt - 1)
}
