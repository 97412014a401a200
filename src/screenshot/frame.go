package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// Frame is a frozen RGBA8 capture of one display, row-major with a top-left
// origin. len(Pix) == Width*Height*BytesPerPixel always holds.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame wraps pix without copying after checking the buffer length.
func NewFrame(width, height int, pix []byte) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: width=%d, height=%d", width, height)
	}
	if want := width * height * BytesPerPixel; len(pix) != want {
		return nil, fmt.Errorf("frame buffer is %d bytes, want %d for %dx%d", len(pix), want, width, height)
	}
	return &Frame{Width: width, Height: height, Pix: pix}, nil
}

// FrameFromRGBA takes ownership of img's pixels when they are tightly packed
// and copies them otherwise.
func FrameFromRGBA(img *image.RGBA) (*Frame, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowBytes := w * BytesPerPixel
	if b.Min == (image.Point{}) && img.Stride == rowBytes && len(img.Pix) == rowBytes*h {
		return NewFrame(w, h, img.Pix)
	}
	pix := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return NewFrame(w, h, pix)
}

// RGBA returns an image view sharing the frame's buffer.
func (f *Frame) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Bounds is the frame rectangle in pixels.
func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

// FlipRows reverses row order in place, turning a bottom-up buffer into a
// top-down one.
func (f *Frame) FlipRows() {
	rowBytes := f.Width * BytesPerPixel
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, f.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := f.Pix[top*rowBytes : (top+1)*rowBytes]
		b := f.Pix[bottom*rowBytes : (bottom+1)*rowBytes]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Release drops the pixel buffer. The frame is unusable afterwards.
func (f *Frame) Release() {
	f.Pix = nil
	f.Width, f.Height = 0, 0
}

// Crop copies r, clipped to the frame, into a new image anchored at the origin.
func (f *Frame) Crop(r image.Rectangle) (*image.RGBA, error) {
	want := r
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop rectangle %v lies outside the %dx%d frame", want, f.Width, f.Height)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	srcStride := f.Width * BytesPerPixel
	rowBytes := r.Dx() * BytesPerPixel
	for y := 0; y < r.Dy(); y++ {
		src := (r.Min.Y+y)*srcStride + r.Min.X*BytesPerPixel
		copy(out.Pix[y*out.Stride:y*out.Stride+rowBytes], f.Pix[src:src+rowBytes])
	}
	return out, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
