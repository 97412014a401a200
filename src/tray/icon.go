package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"runtime"

	"screen-cropper/src/icons"
)

const iconSize = 32

// SVGContent is the tray icon: a dashed selection and a pair of scissors.
const SVGContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <!-- Selection loop/rectangle -->
  <rect x="3" y="3" width="8" height="6" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1" opacity="0.8"/>
  
  <!-- Scissors -->
  <g transform="translate(10.5, 11) rotate(-45)">
    <!-- Scissor handles -->
    <circle cx="0" cy="-1" r="1" fill="none" stroke="#333333" stroke-width="0.8"/>
    <circle cx="0" cy="1" r="1" fill="none" stroke="#333333" stroke-width="0.8"/>
    
    <!-- Scissor blades -->
    <line x1="0.7" y1="-0.3" x2="2.5" y2="-0.8" stroke="#333333" stroke-width="1" stroke-linecap="round"/>
    <line x1="0.7" y1="0.3" x2="2.5" y2="0.8" stroke="#333333" stroke-width="1" stroke-linecap="round"/>
    
    <!-- Center pivot -->
    <circle cx="0.5" cy="0" r="0.3" fill="#666666"/>
  </g>
  
  <!-- Small cut line to show action -->
  <line x1="8" y1="9.5" x2="10" y2="11.5" stroke="#666666" stroke-width="1" stroke-dasharray="1,1" opacity="0.6"/>
</svg>`


// iconBytes renders the tray icon in the format systray expects for this
// platform: ICO on Windows, PNG elsewhere.
func iconBytes() ([]byte, error) {
	png, err := icons.PNG(SVGContent, iconSize)
	if err != nil {
		return nil, fmt.Errorf("render tray icon: %w", err)
	}
	if runtime.GOOS == "windows" {
		return wrapICO(png, iconSize), nil
	}
	return png, nil
}

// wrapICO stores a PNG as the single image of an ICO file.
func wrapICO(png []byte, size int) []byte {
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(png)), 22})
	buf.Write(png)
	return buf.Bytes()
}
