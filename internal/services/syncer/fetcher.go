package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/LockerBox/internal/vendors"
)

// ExhaustedRetriesError is terminal for the current feed: every fetch
// attempt failed. It wraps the last underlying error.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("failed to fetch after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// FetchWithRetry calls the adapter's single-attempt fetch up to maxAttempts
// times with a fixed delay between attempts. The sleep blocks the calling
// goroutine; vendor syncs are a batch job, not a request path.
func FetchWithRetry(ctx context.Context, a vendors.Adapter, url string, maxAttempts int, delay time.Duration) ([]byte, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := a.Fetch(ctx, url)
		if err == nil {
			return raw, nil
		}
		last = err

		if attempt < maxAttempts {
			slog.Warn("fetch attempt failed, retrying", "url", url, "attempt", attempt, "error", err.Error())
			select {
			case <-ctx.Done():
				return nil, &ExhaustedRetriesError{Attempts: attempt, Last: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}
	return nil, &ExhaustedRetriesError{Attempts: maxAttempts, Last: last}
}
