package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"

	"github.com/kbinani/screenshot"
	"github.com/nfnt/resize"
)

// Display describes one active monitor. Origin and pixel size are physical;
// Width and Height are logical (pixels divided by Scale).
type Display struct {
	Index       int
	ID          string
	X           int
	Y           int
	PixelWidth  int
	PixelHeight int
	Width       float64
	Height      float64
	Scale       float64
}

// NewDisplay builds a Display from physical bounds and a scale factor.
// Scale factors below 1 (or NaN) are treated as 1.
func NewDisplay(index int, bounds image.Rectangle, scale float64) Display {
	if math.IsNaN(scale) || scale < 1 {
		scale = 1
	}
	return Display{
		Index:       index,
		ID:          fmt.Sprintf("display-%d", index),
		X:           bounds.Min.X,
		Y:           bounds.Min.Y,
		PixelWidth:  bounds.Dx(),
		PixelHeight: bounds.Dy(),
		Width:       float64(bounds.Dx()) / scale,
		Height:      float64(bounds.Dy()) / scale,
		Scale:       scale,
	}
}

// Bounds returns the physical rectangle of d in virtual-desktop coordinates.
func (d Display) Bounds() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.PixelWidth, d.Y+d.PixelHeight)
}

func (d Display) String() string {
	return fmt.Sprintf("%s (%dx%d at %d,%d, scale %.2f)", d.ID, d.PixelWidth, d.PixelHeight, d.X, d.Y, d.Scale)
}

// Enumerator lists the active displays.
type Enumerator interface {
	Displays() ([]Display, error)
}

// Provider grabs the current contents of one display.
type Provider interface {
	Capture(ctx context.Context, d Display) (*Frame, error)
}

// Region represents a screen region in virtual-desktop pixels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// System enumerates and captures through the OS screenshot APIs.
type System struct {
	scale func(index int) float64
}

// NewSystem returns the OS-backed Enumerator and Provider.
func NewSystem() *System {
	return &System{scale: displayScale}
}

// Displays returns the active displays in OS order.
func (s *System) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, &EnumerationError{Err: errNoDisplays}
	}
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		if b.Empty() {
			log.Printf("screenshot: display %d reports empty bounds, skipping", i)
			continue
		}
		displays = append(displays, NewDisplay(i, b, s.scale(i)))
	}
	if len(displays) == 0 {
		return nil, &EnumerationError{Err: errNoDisplays}
	}
	return displays, nil
}

// Capture grabs d. The OS call itself cannot be interrupted; ctx only stops
// the caller from waiting on it.
func (s *System) Capture(ctx context.Context, d Display) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Display: d, Err: err}
	}

	type result struct {
		img *image.RGBA
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		img, err := screenshot.CaptureRect(d.Bounds())
		resCh <- result{img: img, err: err}
	}()

	var img *image.RGBA
	select {
	case r := <-resCh:
		if r.err != nil {
			return nil, &CaptureError{Display: d, Err: r.err}
		}
		img = r.img
	case <-ctx.Done():
		return nil, &CaptureError{Display: d, Err: ctx.Err()}
	}

	img = fitToDisplay(img, d)
	frame, err := FrameFromRGBA(img)
	if err != nil {
		return nil, &CaptureError{Display: d, Err: err}
	}
	return frame, nil
}

// fitToDisplay rescales img when the OS hands back a buffer whose size
// disagrees with the enumerated pixel size (mixed-DPI desktops do this).
func fitToDisplay(img *image.RGBA, d Display) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == d.PixelWidth && b.Dy() == d.PixelHeight {
		return img
	}
	log.Printf("screenshot: %s captured at %dx%d, resizing to %dx%d", d.ID, b.Dx(), b.Dy(), d.PixelWidth, d.PixelHeight)
	scaled := resize.Resize(uint(d.PixelWidth), uint(d.PixelHeight), img, resize.Bilinear)
	if rgba, ok := scaled.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, d.PixelWidth, d.PixelHeight))
	draw.Draw(rgba, rgba.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return rgba
}

// CaptureRegion captures a rectangle of the virtual desktop as PNG bytes.
func CaptureRegion(region Region) ([]byte, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return EncodePNG(img)
}
