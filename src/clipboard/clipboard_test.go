package clipboard

import (
	"image"
	"testing"
)

func TestWriteImage(t *testing.T) {
	// Needs a clipboard owner; headless runs only log.
	if err := Init(); err != nil {
		t.Logf("Failed to initialize clipboard (expected in headless environment): %v", err)
		if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
			t.Error("expected error writing to an uninitialized clipboard")
		}
		return
	}
	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Errorf("WriteImage: %v", err)
	}
}
