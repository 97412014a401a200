package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"screen-cropper/src/screenshot"
	"screen-cropper/src/selection"
	"screen-cropper/src/session"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func testScene(scale float64) session.Scene {
	return session.Scene{
		Display: screenshot.NewDisplay(0, image.Rect(0, 0, 400, 300), scale),
	}
}

func TestComposeDimsOutsideSelection(t *testing.T) {
	frame := solidFrame(400, 300, color.RGBA{200, 200, 200, 255})
	r := NewRenderer(frame, 1, DefaultStyle)
	dst := image.NewRGBA(r.Bounds())

	sc := testScene(1)
	sc.Phase = selection.Selected
	sc.HasRect = true
	sc.Bounds = selection.Bounds{Min: selection.Point{X: 100, Y: 100}, Max: selection.Point{X: 200, Y: 200}}
	r.Compose(dst, sc)

	inside := dst.RGBAAt(150, 150)
	outside := dst.RGBAAt(20, 280)
	if inside != frame.RGBAAt(150, 150) {
		t.Fatalf("inside pixel = %v, want original %v", inside, frame.RGBAAt(150, 150))
	}
	if outside.R >= inside.R {
		t.Fatalf("outside pixel %v not darker than inside %v", outside, inside)
	}
	if got := dst.RGBAAt(150, 99); got == outside || got == inside {
		t.Fatalf("no border drawn above the selection: %v", got)
	}
	if got := dst.RGBAAt(100, 100); got != DefaultStyle.Handle {
		t.Fatalf("corner handle pixel = %v", got)
	}
}

func TestComposeIdleCrosshair(t *testing.T) {
	frame := solidFrame(100, 100, color.RGBA{0, 0, 0, 255})
	r := NewRenderer(frame, 1, DefaultStyle)
	dst := image.NewRGBA(r.Bounds())

	sc := testScene(1)
	sc.Pointer = selection.Point{X: 50, Y: 50}
	r.Compose(dst, sc)
	background := dst.RGBAAt(5, 5)
	if dst.RGBAAt(40, 50) != background {
		t.Fatal("crosshair drawn while hidden")
	}

	sc.ShowCrosshair = true
	r.Compose(dst, sc)
	for _, p := range []image.Point{{40, 50}, {60, 50}, {50, 40}, {50, 60}} {
		if dst.RGBAAt(p.X, p.Y) == background {
			t.Errorf("crosshair missing at %v", p)
		}
	}
	if dst.RGBAAt(30, 50) != background {
		t.Error("crosshair longer than its arm length")
	}
}

func TestComposeScalesToPhysicalPixels(t *testing.T) {
	frame := solidFrame(400, 300, color.RGBA{200, 200, 200, 255})
	r := NewRenderer(frame, 2, DefaultStyle)
	dst := image.NewRGBA(r.Bounds())

	sc := testScene(2)
	sc.HasRect = true
	sc.Phase = selection.Selected
	sc.Bounds = selection.Bounds{Min: selection.Point{X: 50, Y: 50}, Max: selection.Point{X: 100, Y: 100}}
	r.Compose(dst, sc)

	if dst.RGBAAt(150, 150) != frame.RGBAAt(150, 150) {
		t.Fatal("selection interior not shown at physical coordinates")
	}
	if dst.RGBAAt(90, 150) == frame.RGBAAt(90, 150) {
		t.Fatal("area left of the scaled selection is not dimmed")
	}
}

func TestComposeDrawsActionButtons(t *testing.T) {
	frame := solidFrame(400, 300, color.RGBA{0, 0, 0, 255})
	r := NewRenderer(frame, 1, DefaultStyle)
	dst := image.NewRGBA(r.Bounds())

	rect := selection.Rect{Start: selection.Point{X: 100, Y: 100}, End: selection.Point{X: 200, Y: 200}}
	sc := testScene(1)
	sc.HasRect = true
	sc.Phase = selection.Selected
	sc.Bounds = rect.Normalized()
	sc.Actions = session.DefaultActions
	sc.Buttons = selection.ActionBar(rect, len(sc.Actions))
	sc.Pointer = selection.Point{X: 190, Y: 220}
	r.Compose(dst, sc)

	// Copy button corner, away from the icon.
	if got := dst.RGBAAt(141, 211); got == dst.RGBAAt(5, 5) {
		t.Fatal("copy button background not drawn")
	}
	// Hovered cancel button uses the hover colour at its corner.
	if got := dst.RGBAAt(181, 211); got.B < 150 {
		t.Fatalf("hovered button pixel = %v, want hover colour", got)
	}
}
