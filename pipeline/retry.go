package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/smach/authorfeed"
)

// RenderFunc is the signature for a render function.
type RenderFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for render retries: 2s, 5s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 5 * time.Second}
}

// RenderWithRetry calls render until it succeeds, waiting delays[i] before
// attempt i+2. Invalid-argument errors are not retried. A nil logger
// disables retry logging.
func RenderWithRetry(ctx context.Context, url string, render RenderFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := render(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || authorfeed.ErrorCode(err) == authorfeed.EINVALID {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if logger != nil {
			logger.Warn("render retry", "url", url, "attempt", attempt+2, "delay", delays[attempt], "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
