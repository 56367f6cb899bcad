package config

import "errors"

// Configuration errors. Load wraps one of these so callers can use errors.Is.
var (
	// ErrMissing indicates a required setting is absent or empty
	ErrMissing = errors.New("missing configuration")
	// ErrMalformed indicates the file could not be parsed or holds an invalid value
	ErrMalformed = errors.New("malformed configuration")
)
