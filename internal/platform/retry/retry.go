package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// Policy bounds how often and how patiently a call is retried.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Multiplier > 1 grows the delay after each failed attempt. 0 or 1 keeps it fixed.
	Multiplier float64
	MaxDelay   time.Duration
	// Jitter is the +/- fraction applied to each sleep (0.2 = 20%).
	Jitter float64

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Default is the external generator contract: 3 attempts, fixed 5s between them.
func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: 5 * time.Second}
}

// Fixed returns a policy with a constant delay between attempts.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Delay: delay}
}

// Exponential returns a policy doubling the delay after each failure, capped at max.
func Exponential(attempts int, base, max time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Delay: base, Multiplier: 2, MaxDelay: max, Jitter: 0.2}
}

// WithSleep replaces the sleeper; tests use it to avoid real waits.
func (p Policy) WithSleep(fn func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Outcome is the typed result of a retried call. Exhausted is set when every
// attempt failed; Err then holds the last error.
type Outcome[T any] struct {
	Value     T
	Err       error
	Attempts  int
	Exhausted bool
}

func (o Outcome[T]) OK() bool { return o.Err == nil }

// Do runs fn until it succeeds, the attempts run out, or ctx is done. It never
// panics past the boundary and never returns a bare error: callers inspect the
// Outcome and decide on their own fallback.
func Do[T any](ctx context.Context, p Policy, log *logger.Logger, label string, fn func(ctx context.Context) (T, error)) Outcome[T] {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := p.Delay

	var out Outcome[T]
	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt
		v, err := fn(ctx)
		if err == nil {
			out.Value = v
			out.Err = nil
			return out
		}
		out.Err = err
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			break
		}
		if log != nil {
			log.Warn("Call failed, retrying", "label", label, "attempt", attempt, "max_attempts", attempts, "error", err)
		}
		if attempt == attempts {
			break
		}
		if serr := sleep(ctx, jitter(delay, p.Jitter)); serr != nil {
			out.Err = fmt.Errorf("%s: %w", label, serr)
			break
		}
		if p.Multiplier > 1 {
			delay = time.Duration(float64(delay) * p.Multiplier)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
	}
	out.Exhausted = true
	if log != nil {
		log.Error("Call failed after retries", "label", label, "attempts", out.Attempts, "error", out.Err)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

func jitter(base time.Duration, frac float64) time.Duration {
	if base <= 0 || frac <= 0 {
		return base
	}
	delta := float64(base) * frac
	low := float64(base) - delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*2*delta)
}
