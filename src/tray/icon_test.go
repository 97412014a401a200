package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestIconBytesRender(t *testing.T) {
	data, err := iconBytes()
	if err != nil {
		t.Fatalf("iconBytes: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty icon")
	}
}

func TestWrapICO(t *testing.T) {
	pngData := []byte("\x89PNG fake payload")
	ico := wrapICO(pngData, 32)
	if len(ico) != 22+len(pngData) {
		t.Fatalf("ico length = %d, want %d", len(ico), 22+len(pngData))
	}
	if typ := binary.LittleEndian.Uint16(ico[2:4]); typ != 1 {
		t.Fatalf("type = %d, want 1 (icon)", typ)
	}
	if ico[6] != 32 || ico[7] != 32 {
		t.Fatalf("dimensions = %dx%d", ico[6], ico[7])
	}
	if size := binary.LittleEndian.Uint32(ico[14:18]); size != uint32(len(pngData)) {
		t.Fatalf("size = %d", size)
	}
	if off := binary.LittleEndian.Uint32(ico[18:22]); off != 22 {
		t.Fatalf("offset = %d", off)
	}
	if !bytes.Equal(ico[22:], pngData) {
		t.Fatal("payload not copied")
	}

	if big := wrapICO(pngData, 256); big[6] != 0 {
		t.Fatalf("256px icons encode their size as 0, got %d", big[6])
	}
}

func TestIconDecodes(t *testing.T) {
	data, err := iconBytes()
	if err != nil {
		t.Fatalf("iconBytes: %v", err)
	}
	if data[0] == 0 && data[1] == 0 {
		data = data[22:]
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("icon size = %v", b)
	}
}
