package screenshot

import (
	"errors"
	"fmt"
)

var errNoDisplays = errors.New("no active displays found")

// EnumerationError means the display list could not be produced at all.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate displays: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// CaptureError means one display could not be grabbed.
type CaptureError struct {
	Display Display
	Err     error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Display, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
