// Package fetch executes HTTP GET requests with the politeness rules the
// catalog service demands.
//
// The Fetcher carries the process-wide rate-limit state: the first throttled
// response (403/429) sleeps five seconds, permanently raises the
// inter-request delay floor to five seconds, and retries once; a second
// throttled response anywhere afterwards returns ErrRateLimited, which
// callers treat as fatal to the whole batch. Other HTTP error statuses are
// retried up to five times with exponential backoff. Every request carries a
// browser user-agent header.
//
// Callers must also pause CurrentDelay between independent top-level
// lookups; the Fetcher only sleeps inside retries of a single request.
package fetch
