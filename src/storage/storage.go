// Package storage writes committed crops to timestamped image files.
package storage

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	FormatPNG = "png"
	FormatJPG = "jpg"
)

// Storage saves images into one directory.
type Storage struct {
	directory string
	format    string
	quality   int
	now       func() time.Time
}

// New returns a Storage for dir. An empty format means PNG; quality only
// applies to JPEG.
func New(dir, format string, quality int) *Storage {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "jpeg" {
		format = FormatJPG
	}
	if format != FormatJPG {
		format = FormatPNG
	}
	if quality < 1 || quality > 100 {
		quality = 90
	}
	return &Storage{directory: dir, format: format, quality: quality, now: time.Now}
}

// Directory is where files are written.
func (s *Storage) Directory() string { return s.directory }

// Save writes img and returns the new file's path. Files written within the
// same second get a numeric suffix instead of overwriting each other.
func (s *Storage) Save(img image.Image) (string, error) {
	if err := os.MkdirAll(s.directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create save directory: %w", err)
	}

	base := "screenshot_" + s.now().Format("20060102_150405")
	path := filepath.Join(s.directory, base+"."+s.format)
	var file *os.File
	var err error
	for i := 1; ; i++ {
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) || i > 99 {
			return "", fmt.Errorf("failed to create file: %w", err)
		}
		path = filepath.Join(s.directory, fmt.Sprintf("%s_%d.%s", base, i, s.format))
	}

	switch s.format {
	case FormatJPG:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: s.quality})
	default:
		err = png.Encode(file, img)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
