package fetch

import (
	"errors"
	"fmt"
)

// ErrRateLimited reports that the catalog service throttled a request after
// the enforced delay was already in effect. The current batch must stop;
// resuming later is safe because completed ledger entries stand.
var ErrRateLimited = errors.New("catalog service is still throttling requests after enforced delay")

// StatusError describes a non-throttling HTTP failure that survived retries.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s: %s", e.StatusCode, e.URL, e.Status)
}
