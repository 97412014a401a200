package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screen-cropper/src/screenshot"
)

type fakeSource struct {
	displays []screenshot.Display
}

func (f fakeSource) Displays() ([]screenshot.Display, error) { return f.displays, nil }

func (f fakeSource) Capture(ctx context.Context, d screenshot.Display) (*screenshot.Frame, error) {
	img := image.NewRGBA(image.Rect(0, 0, d.PixelWidth, d.PixelHeight))
	img.Set(12, 7, color.RGBA{R: 255, A: 255})
	return screenshot.FrameFromRGBA(img)
}

func twoDisplays() fakeSource {
	return fakeSource{displays: []screenshot.Display{
		screenshot.NewDisplay(0, image.Rect(0, 0, 64, 48), 1),
		screenshot.NewDisplay(1, image.Rect(64, 0, 64+80, 60), 2),
	}}
}

func TestDisplaysJSON(t *testing.T) {
	var out bytes.Buffer
	if err := runWithArgs([]string{"cropper-cli", "displays", "--json"}, &out, twoDisplays()); err != nil {
		t.Fatalf("displays: %v", err)
	}
	var infos []displayInfo
	if err := json.Unmarshal(out.Bytes(), &infos); err != nil {
		t.Fatalf("Failed to parse JSON: %v\n%s", err, out.String())
	}
	if len(infos) != 2 || infos[1].X != 64 || infos[1].Scale != 2 || infos[1].PixelWidth != 80 {
		t.Fatalf("infos = %+v", infos)
	}
}

func TestDisplaysPlain(t *testing.T) {
	var out bytes.Buffer
	if err := runWithArgs([]string{"cropper-cli", "displays"}, &out, twoDisplays()); err != nil {
		t.Fatalf("displays: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 2 {
		t.Fatalf("expected one line per display, got %q", out.String())
	}
}

func TestCaptureRegionToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.png")
	var out bytes.Buffer
	err := runWithArgs([]string{"cropper-cli", "capture", "-display=1", "--region", "10,5,20,10", "--out", path}, &out, twoDisplays())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if strings.TrimSpace(out.String()) != path {
		t.Fatalf("stdout = %q, want path", out.String())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("crop size = %v, want 20x10", b)
	}
	if r, _, _, _ := img.At(2, 2).RGBA(); r == 0 {
		t.Fatal("expected the marked pixel at (12,7) to land at (2,2)")
	}
}

func TestCaptureToStdout(t *testing.T) {
	var out bytes.Buffer
	if err := runWithArgs([]string{"cropper-cli", "capture", "--out", "-"}, &out, twoDisplays()); err != nil {
		t.Fatalf("capture: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("size = %v, want whole display 64x48", b)
	}
}

func TestCaptureErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown display", []string{"cropper-cli", "capture", "--display", "7", "--out", "-"}},
		{"bad region", []string{"cropper-cli", "capture", "--region", "1,2,3", "--out", "-"}},
		{"empty region", []string{"cropper-cli", "capture", "--region", "0,0,0,5", "--out", "-"}},
		{"region outside display", []string{"cropper-cli", "capture", "--region", "500,500,10,10", "--out", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runWithArgs(tt.args, &bytes.Buffer{}, twoDisplays()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"cropper-cli", "capture", "-display", "1", "-out=/tmp/a.png", "-x"})
	want := []string{"cropper-cli", "capture", "--display", "1", "--out=/tmp/a.png", "-x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
