package clipboard

import (
	"errors"
	"image"
	"sync"

	"golang.design/x/clipboard"

	"screen-cropper/src/screenshot"
)

var (
	writeMu sync.Mutex
	ready   bool
)

var errNotInitialized = errors.New("clipboard not initialized")

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteImage places img on the clipboard as PNG. Writes are serialized so
// parallel commits cannot interleave.
func WriteImage(img image.Image) error {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return errNotInitialized
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
