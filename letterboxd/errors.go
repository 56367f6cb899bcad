package letterboxd

import (
	"errors"
	"fmt"
)

// Common errors returned by the Letterboxd client.
var (
	// ErrNotFound is returned when the user handle resolves to no watchlist.
	ErrNotFound = errors.New("watchlist not found")

	// ErrUnreachable is returned on transport failures and unexpected statuses.
	ErrUnreachable = errors.New("letterboxd unreachable")

	// ErrParse is returned when a page cannot be interpreted as a watchlist.
	ErrParse = errors.New("unable to parse watchlist page")

	// ErrInvalidUser is returned for an empty user handle.
	ErrInvalidUser = errors.New("letterboxd user is required")

	// ErrTooManyPages is returned when a watchlist still links to a next
	// page after the client's page limit.
	ErrTooManyPages = errors.New("watchlist exceeds page limit")
)

// PageError records which watchlist page failed.
type PageError struct {
	User string
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("letterboxd watchlist %s page %d: %v", e.User, e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// StatusError is an unexpected HTTP status from Letterboxd.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
