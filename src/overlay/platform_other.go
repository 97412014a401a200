//go:build !windows

package overlay

import (
	"image"

	"screen-cropper/src/selection"
)

func enableDPIAwareness() {}

// placeWindow is a no-op here; the window manager decides placement.
func placeWindow(title string, b image.Rectangle) error { return nil }

func setCursor(title string, icon selection.CursorIcon) {}

func setCursorVisible(title string, visible bool) {}
