// Package poll provides bounded waiting for conditions on an asynchronously
// changing document
package poll

import (
	"context"
	"time"
)

// Condition reports whether the awaited state has been reached. An error is
// treated as "not yet": the document may be mid-transition
type Condition func(ctx context.Context) (bool, error)

// Until evaluates cond immediately and then every interval, at most maxAttempts
// times in total. It returns true as soon as cond holds and false when the
// attempts are exhausted. The only error returned is the context's
func Until(ctx context.Context, interval time.Duration, maxAttempts int, cond Condition) (bool, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if ok, err := cond(ctx); err == nil && ok {
			return true, nil
		}
		if attempt >= maxAttempts {
			return false, nil
		}
		if err := Sleep(ctx, interval); err != nil {
			return false, err
		}
	}
}

// Within is Until with the attempt count derived from a total wait budget
func Within(ctx context.Context, interval, total time.Duration, cond Condition) (bool, error) {
	return Until(ctx, interval, Attempts(interval, total), cond)
}

// Attempts is the number of checks that fit in total at the given interval,
// counting the immediate first check
func Attempts(interval, total time.Duration) int {
	if interval <= 0 || total <= 0 {
		return 1
	}
	return int(total/interval) + 1
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
