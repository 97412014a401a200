// Package icons holds the SVG artwork used by the overlay and the tray and
// rasterizes it on demand.
package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const Copy = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="5" y="5" width="8" height="9" rx="1" fill="none" stroke="#ffffff" stroke-width="1.5"/>
  <path d="M3 11V3a1 1 0 0 1 1-1h6" fill="none" stroke="#ffffff" stroke-width="1.5"/>
</svg>`

const Save = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <path d="M2 2h10l2 2v10H2z" fill="none" stroke="#ffffff" stroke-width="1.5"/>
  <rect x="5" y="2.5" width="5" height="3" fill="#ffffff"/>
  <rect x="4.5" y="9" width="7" height="4" fill="none" stroke="#ffffff" stroke-width="1"/>
</svg>`

const Cancel = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <line x1="3.5" y1="3.5" x2="12.5" y2="12.5" stroke="#ff6b6b" stroke-width="2" stroke-linecap="round"/>
  <line x1="12.5" y1="3.5" x2="3.5" y2="12.5" stroke="#ff6b6b" stroke-width="2" stroke-linecap="round"/>
</svg>`

type cacheKey struct {
	svg  string
	size int
}

var (
	cacheMu sync.Mutex
	cache   = map[cacheKey]*image.RGBA{}
)

// Rasterize renders svg into a size x size image. Results are cached; callers
// must not modify the returned image.
func Rasterize(svg string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}
	key := cacheKey{svg: svg, size: size}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if img, ok := cache[key]; ok {
		return img, nil
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	cache[key] = img
	return img, nil
}

// PNG renders svg at size and encodes it as PNG.
func PNG(svg string, size int) ([]byte, error) {
	img, err := Rasterize(svg, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
