package screenshot

import (
	"log"

	"github.com/go-vgo/robotgo"
)

// displayScale asks the OS for the DPI scale of one display. robotgo panics
// on some headless X servers, so a failure falls back to 1.
func displayScale(index int) (scale float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("screenshot: scale lookup for display %d failed: %v", index, r)
			scale = 1
		}
	}()
	return robotgo.ScaleF(index)
}
