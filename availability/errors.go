package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/s0up4200/watchscout/tmdb"
)

// Lookup error kinds. LookupError wraps exactly one of these.
var (
	// ErrTransient is a network failure, timeout or 5xx response
	ErrTransient = errors.New("transient lookup failure")
	// ErrRateLimited means the metadata API answered 429
	ErrRateLimited = errors.New("rate limited")
	// ErrRejected is a 4xx response other than 429; retrying will not help
	ErrRejected = errors.New("lookup rejected")
	// ErrNotResolved means no canonical media identifier matched the entry.
	// Lookup reports this as an empty Match, not as an error.
	ErrNotResolved = errors.New("no matching film")
)

// LookupError is a classified failure of a single availability lookup
type LookupError struct {
	Kind  error
	Err   error
	Retry time.Duration
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is matches the error kind so errors.Is(err, ErrRateLimited) works
func (e *LookupError) Is(target error) bool {
	return target == e.Kind
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// RetryAfter is the server's requested wait, zero when none was given
func (e *LookupError) RetryAfter() time.Duration {
	return e.Retry
}

// Classify maps an error from the metadata API onto a lookup error kind.
// Context errors and nil pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return err
	}

	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimited():
			return &LookupError{Kind: ErrRateLimited, Err: err, Retry: apiErr.RetryAfter}
		case apiErr.IsServerError():
			return &LookupError{Kind: ErrTransient, Err: err}
		default:
			return &LookupError{Kind: ErrRejected, Err: err}
		}
	}

	// transport errors, per-request timeouts and undecodable bodies
	return &LookupError{Kind: ErrTransient, Err: err}
}

// Retryable reports whether a lookup error is worth another attempt
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}
