package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	logFileName  = "screen_cropper_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup enables file logging with basic size-based rotation (10MB, max 3 files).
// When disabled, logs are discarded (keeps stdout clean).
func Setup(enableFileLogging bool) {
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		return
	}
	w, err := newRotatingWriter(logFileName, maxSizeBytes, maxArchives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// rotatingWriter appends to path and shifts it to path.1 .. path.N once it
// would grow past maxSize. The log package serializes calls to Write.
type rotatingWriter struct {
	path     string
	maxSize  int64
	archives int
	f        *os.File
}

func newRotatingWriter(path string, maxSize int64, archives int) (*rotatingWriter, error) {
	w := &rotatingWriter{path: path, maxSize: maxSize, archives: archives}
	w.rotateIfNeeded(0)
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.rotateIfNeeded(int64(len(p)))
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

func (w *rotatingWriter) Close() error { return w.f.Close() }

func (w *rotatingWriter) rotateIfNeeded(incoming int64) {
	// If base would exceed max size, rotate: .1, .2, .3 (oldest discarded)
	st, err := os.Stat(w.path)
	if err != nil || st.Size()+incoming <= w.maxSize || st.Size() == 0 {
		return
	}
	_ = os.Remove(w.archiveName(w.archives))
	for i := w.archives - 1; i >= 1; i-- {
		_ = os.Rename(w.archiveName(i), w.archiveName(i+1))
	}
	_ = os.Rename(w.path, w.archiveName(1))
}

func (w *rotatingWriter) archiveName(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
