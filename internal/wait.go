package internal

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval matches the cadence of a typical WebDriver wait.
const DefaultPollInterval = 500 * time.Millisecond

// Timing is the poll interval and budget of a single wait point.
type Timing struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WithTimeout returns a copy of t with a different budget.
func (t Timing) WithTimeout(d time.Duration) Timing {
	t.Timeout = d
	return t
}

func (t Timing) interval() time.Duration {
	if t.Interval <= 0 {
		return DefaultPollInterval
	}
	return t.Interval
}

// Poll evaluates cond immediately and then every t.Interval until it reports
// done, returns an error, or t.Timeout elapses. On timeout the returned error
// satisfies wait.Interrupted.
func Poll(ctx context.Context, t Timing, cond func(ctx context.Context) (bool, error)) error {
	return wait.PollUntilContextTimeout(ctx, t.interval(), t.Timeout, true, func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return cond(ctx)
	})
}

// retryUntil runs attempt until it succeeds. Errors accepted by retryable are
// swallowed and remembered; anything else aborts. When the budget runs out the
// result is an *InteractionTimeoutError carrying the last swallowed error.
func retryUntil(ctx context.Context, t Timing, what string, retryable func(error) bool, attempt func(ctx context.Context) error) error {
	var last error
	err := Poll(ctx, t, func(pollCtx context.Context) (bool, error) {
		err := attempt(pollCtx)
		switch {
		case err == nil:
			return true, nil
		case pollCtx.Err() != nil:
			// the attempt was cut short by the deadline itself
			if last == nil {
				last = err
			}
			return false, nil
		case retryable(err):
			last = err
			return false, nil
		default:
			return false, err
		}
	})
	if err == nil {
		return nil
	}
	if !wait.Interrupted(err) {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return &InteractionTimeoutError{What: what, Timeout: t.Timeout, Err: last}
}
