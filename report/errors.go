package report

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned for an output format Render does not know
var ErrUnknownFormat = errors.New("unknown report format")

// HighlightError indicates a highlight expression could not be compiled
type HighlightError struct {
	Expression string
	Err        error
}

func (e *HighlightError) Error() string {
	return fmt.Sprintf("invalid highlight expression '%s': %v", e.Expression, e.Err)
}

func (e *HighlightError) Unwrap() error {
	return e.Err
}
