package render

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by RenderLarge once Stop has been called.
var ErrStopped = errors.New("render cache stopped")

// RenderError reports that the Markdown collaborator failed. Nothing is cached for the
// input, and retrying the same text will fail the same way.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render markdown: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func asRenderError(err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Err: err}
}
