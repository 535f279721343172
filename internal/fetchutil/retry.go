package fetchutil

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultMaxAttempts is the per-call attempt budget.
	DefaultMaxAttempts = 3

	// Bounds for the random delay inserted before every attempt. The
	// delay desynchronizes concurrent callers so a burst of workers
	// does not hit the source in lockstep.
	minPreAttemptDelay = 100 * time.Millisecond
	maxPreAttemptDelay = 500 * time.Millisecond
)

// Operation is one remote call attempt.
type Operation func(ctx context.Context) error

// Retrier wraps remote calls with the backoff policy: only rate-limited
// failures are retried (exponential backoff plus jitter); every other
// failure propagates immediately as the per-ticker outcome.
type Retrier struct {
	maxAttempts int

	// Injection points for tests; both default to real timing.
	sleep   func(ctx context.Context, d time.Duration) error
	backoff func(attempt int) time.Duration
	jitter  func() time.Duration
}

// NewRetrier creates a Retrier with the given attempt budget.
// A non-positive budget falls back to the default.
func NewRetrier(maxAttempts int) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		sleep:       sleepContext,
		backoff:     backoffDelay,
		jitter:      preAttemptDelay,
	}
}

// Do runs op under the retry policy. name and ticker identify the
// operation in the terminal error when the budget is exhausted.
func (r *Retrier) Do(ctx context.Context, name, ticker string, op Operation) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.sleep(ctx, r.jitter()); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRateLimited(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}

		wait := r.backoff(attempt)
		slog.Debug("rate limited, backing off",
			"operation", name,
			"ticker", ticker,
			"attempt", attempt,
			"wait", wait)
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s for %s: gave up after %d attempts: %w", name, ticker, r.maxAttempts, lastErr)
}

// backoffDelay implements 2^attempt seconds plus up to one second of jitter.
func backoffDelay(attempt int) time.Duration {
	secs := math.Pow(2, float64(attempt)) + rand.Float64()
	return time.Duration(secs * float64(time.Second))
}

// preAttemptDelay returns a uniform random delay within the configured bounds.
func preAttemptDelay() time.Duration {
	span := maxPreAttemptDelay - minPreAttemptDelay
	return minPreAttemptDelay + time.Duration(rand.Int63n(int64(span)))
}

// sleepContext blocks for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
