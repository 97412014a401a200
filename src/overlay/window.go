// Package overlay shows a frozen capture full-screen on one display and turns
// the window's mouse and keyboard events into session input.
package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"screen-cropper/src/screenshot"
	"screen-cropper/src/selection"
	"screen-cropper/src/session"
)

// Main starts the windowing driver and calls f with a factory for overlay
// windows. It must be called from the main goroutine and returns when f does.
func Main(f func(session.WindowFactory)) {
	driver.Main(func(s screen.Screen) {
		enableDPIAwareness()
		f(NewFactory(s, DefaultStyle))
	})
}

// Factory opens shiny overlay windows.
type Factory struct {
	screen screen.Screen
	style  Style
}

func NewFactory(s screen.Screen, style Style) *Factory {
	return &Factory{screen: s, style: style}
}

// Open creates a window covering d showing frame.
func (f *Factory) Open(d screenshot.Display, frame *screenshot.Frame) (session.Window, error) {
	title := fmt.Sprintf("screen-cropper %s", d.ID)
	w, err := f.screen.NewWindow(&screen.NewWindowOptions{
		Width:  frame.Width,
		Height: frame.Height,
		Title:  title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}
	if err := placeWindow(title, d.Bounds()); err != nil {
		log.Printf("overlay: could not place %s: %v", d.ID, err)
	}
	return &window{
		screen:   f.screen,
		win:      w,
		title:    title,
		scale:    d.Scale,
		renderer: NewRenderer(frame.RGBA(), d.Scale, f.style),
	}, nil
}

// cancelEvent wakes NextEvent when the caller's context ends.
type cancelEvent struct{}

type window struct {
	screen   screen.Screen
	win      screen.Window
	title    string
	scale    float64
	renderer *Renderer
	buf      screen.Buffer

	pos       selection.Point
	lastScene session.Scene
	rendered  bool

	closeOnce sync.Once
}

func (w *window) NextInput(ctx context.Context) (session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return session.Snapshot{}, err
	}
	stop := context.AfterFunc(ctx, func() { w.win.Send(cancelEvent{}) })
	defer stop()

	for {
		switch e := w.win.NextEvent().(type) {
		case cancelEvent:
			if err := ctx.Err(); err != nil {
				return session.Snapshot{}, err
			}
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return session.Snapshot{Pos: w.pos, CloseRequested: true}, nil
			}
		case paint.Event:
			// Our own Publish calls come back as internal paints.
			if w.rendered && e.External {
				if err := w.present(w.lastScene); err != nil {
					return session.Snapshot{}, err
				}
			}
		case size.Event:
		case mouse.Event:
			if snap, ok := w.mouseSnapshot(e); ok {
				return snap, nil
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			switch e.Code {
			case key.CodeEscape:
				return session.Snapshot{Pos: w.pos, EscapePressed: true}, nil
			case key.CodeReturnEnter, key.CodeKeypadEnter:
				return session.Snapshot{Pos: w.pos, EnterPressed: true}, nil
			}
		case error:
			return session.Snapshot{}, e
		}
	}
}

// mouseSnapshot converts a physical-pixel mouse event to logical input. Wheel
// steps are dropped.
func (w *window) mouseSnapshot(e mouse.Event) (session.Snapshot, bool) {
	if e.Direction == mouse.DirStep {
		return session.Snapshot{}, false
	}
	w.pos = selection.Point{X: float64(e.X) / w.scale, Y: float64(e.Y) / w.scale}
	snap := session.Snapshot{Pos: w.pos}
	switch e.Button {
	case mouse.ButtonLeft:
		snap.Pressed = e.Direction == mouse.DirPress
		snap.Released = e.Direction == mouse.DirRelease
	case mouse.ButtonRight:
		snap.SecondaryPressed = e.Direction == mouse.DirPress
	}
	return snap, true
}

func (w *window) Render(scene session.Scene) error {
	w.lastScene = scene
	w.rendered = true
	return w.present(scene)
}

func (w *window) present(scene session.Scene) error {
	if w.buf == nil {
		b, err := w.screen.NewBuffer(w.renderer.Bounds().Size())
		if err != nil {
			return fmt.Errorf("failed to allocate overlay buffer: %w", err)
		}
		w.buf = b
	}
	w.renderer.Compose(w.buf.RGBA(), scene)
	w.win.Upload(image.Point{}, w.buf, w.buf.Bounds())
	w.win.Publish()
	return nil
}

func (w *window) SetCursor(icon selection.CursorIcon) { setCursor(w.title, icon) }

func (w *window) SetCursorVisible(visible bool) { setCursorVisible(w.title, visible) }

func (w *window) Close() error {
	w.closeOnce.Do(func() {
		if w.buf != nil {
			w.buf.Release()
		}
		w.win.Release()
	})
	return nil
}
