// Package backoff holds the retry policy shared by per-entry lookups.
package backoff

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts counts the first try; values below 1 mean a single attempt.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
	// Jitter is the upper bound of a random extra wait added to each retry.
	Jitter time.Duration
}

// DefaultPolicy is used when no policy is configured
var DefaultPolicy = Policy{
	MaxAttempts: 4,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    10 * time.Second,
	Jitter:      250 * time.Millisecond,
}

// RetryAfterError lets an error ask for a minimum wait before the next attempt.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

// hintFactor bounds a server hint to this many MaxDelays
const hintFactor = 3

// HintLimit is the longest server-requested wait the policy will honour.
// Zero means any hint is honoured.
func (p Policy) HintLimit() time.Duration {
	if p.MaxDelay <= 0 {
		return 0
	}
	return hintFactor * p.MaxDelay
}

// hintTooLong reports whether err asks for a wait beyond HintLimit
func (p Policy) hintTooLong(err error) bool {
	limit := p.HintLimit()
	var hinted RetryAfterError
	return limit > 0 && errors.As(err, &hinted) && hinted.RetryAfter() > limit
}

// Do runs fn until it succeeds, fails with an error retryable rejects, the
// attempts are used up, or ctx is done. An error whose Retry-After exceeds
// HintLimit is not retried. It returns the last error and the number of
// attempts made. onRetry may be nil.
func (p Policy) Do(ctx context.Context, fn func() error, retryable func(error) bool, onRetry func(attempt int, err error, wait time.Duration)) (int, error) {
	attempts := 0
	if err := ctx.Err(); err != nil {
		return attempts, err
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if retryable == nil {
		retryable = func(error) bool { return true }
	}

	err := retry.Do(
		func() error {
			attempts++
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxAttempts)),
		retry.LastErrorOnly(true),
		retry.Delay(p.BaseDelay),
		retry.MaxJitter(p.Jitter),
		retry.DelayType(p.delay),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err) && !p.hintTooLong(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			if onRetry != nil && int(n)+1 < maxAttempts {
				onRetry(int(n)+1, err, p.Wait(int(n)+1, err))
			}
		}),
	)
	return attempts, err
}

// Wait returns the un-jittered wait before the given retry (1-based),
// honouring a RetryAfterError hint up to HintLimit.
func (p Policy) Wait(retryNumber int, err error) time.Duration {
	if retryNumber < 1 {
		retryNumber = 1
	}
	wait := p.BaseDelay
	for i := 1; i < retryNumber; i++ {
		wait *= 2
		if p.MaxDelay > 0 && wait >= p.MaxDelay {
			wait = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		wait = p.MaxDelay
	}

	var hinted RetryAfterError
	if errors.As(err, &hinted) && hinted.RetryAfter() > wait {
		wait = hinted.RetryAfter()
		if limit := p.HintLimit(); limit > 0 && wait > limit {
			wait = limit
		}
	}
	return wait
}

// delay adapts Wait to retry-go; n is the 0-based index of the failed attempt.
func (p Policy) delay(n uint, err error, config *retry.Config) time.Duration {
	wait := p.Wait(int(n)+1, err)
	if p.Jitter > 0 {
		wait += retry.RandomDelay(n, err, config)
	}
	return wait
}
