package instagram

import (
	"context"
	"errors"
	"time"
)

// doWithRetry runs call up to maxAttempts times. Rate-limit errors wait
// the server's Retry-After (or a fixed fallback), transient errors back
// off exponentially from retryBaseDelay. The loop is deliberately flat so
// the worst-case attempt count and latency are obvious from this function
// alone. The last error, payload included, is returned once attempts are
// exhausted or a fatal error appears.
func (c *GraphClient) doWithRetry(ctx context.Context, call func() error) error {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.retryDelay(lastErr, attempt)); err != nil {
				return err
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !retriable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func (c *GraphClient) retryDelay(err error, attempt int) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind() == KindRateLimited {
		if apiErr.RetryAfter > 0 {
			return apiErr.RetryAfter
		}
		return c.rateLimitDelay
	}
	return c.retryBaseDelay * time.Duration(1<<uint(attempt-1))
}
