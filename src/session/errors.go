package session

import (
	"fmt"

	"screen-cropper/src/screenshot"
)

// RenderError means the overlay window for a display could not be created or
// drawn to.
type RenderError struct {
	Display screenshot.Display
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Display, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
