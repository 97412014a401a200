// Package session runs the capture-and-select loop for a single display: one
// frozen frame, one selection state, one overlay window.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/google/uuid"

	"screen-cropper/src/screenshot"
	"screen-cropper/src/selection"
)

// ErrCancelled is reported when the user dismisses a display without committing.
var ErrCancelled = errors.New("selection cancelled")

// Snapshot is one batch of input read from a window.
type Snapshot struct {
	Pos              selection.Point
	Pressed          bool
	Released         bool
	SecondaryPressed bool
	EscapePressed    bool
	EnterPressed     bool
	CloseRequested   bool
}

// Window is the overlay surface a session draws into and reads input from.
type Window interface {
	// NextInput blocks until the next input batch or until ctx is done.
	NextInput(ctx context.Context) (Snapshot, error)
	Render(scene Scene) error
	SetCursor(icon selection.CursorIcon)
	SetCursorVisible(visible bool)
	Close() error
}

// WindowFactory opens an overlay window covering d and showing frame.
type WindowFactory interface {
	Open(d screenshot.Display, frame *screenshot.Frame) (Window, error)
}

// Action is a button on the selection's action bar.
type Action int

const (
	ActionCopy Action = iota
	ActionSave
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionSave:
		return "save"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// DefaultActions is the action bar shown when none is configured.
var DefaultActions = []Action{ActionCopy, ActionSave, ActionCancel}

// Scene is everything a renderer needs to draw one tick.
type Scene struct {
	Display       screenshot.Display
	Phase         selection.Phase
	Bounds        selection.Bounds
	HasRect       bool
	Pointer       selection.Point
	ShowCrosshair bool
	Handle        selection.Handle
	HasHandle     bool
	Moving        bool
	Actions       []Action
	Buttons       []selection.Bounds
	Cursor        selection.CursorIcon
	CursorVisible bool
}

// Reason says why a session ended.
type Reason int

const (
	ReasonCancelled Reason = iota
	ReasonClosed
	ReasonCommitted
	ReasonAborted
	ReasonFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonCancelled:
		return "cancelled"
	case ReasonClosed:
		return "closed"
	case ReasonCommitted:
		return "committed"
	case ReasonAborted:
		return "aborted"
	case ReasonFailed:
		return "failed"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// UserEnded reports whether the user, rather than an error or a sibling,
// finished the session.
func (r Reason) UserEnded() bool {
	return r == ReasonCancelled || r == ReasonClosed || r == ReasonCommitted
}

// Outcome is the result of one session.
type Outcome struct {
	Display screenshot.Display
	Reason  Reason
	Action  Action
	Crop    *image.RGBA
	Bounds  selection.Bounds
	Err     error
}

// Options configures a Session.
type Options struct {
	Display  screenshot.Display
	Provider screenshot.Provider
	Windows  WindowFactory
	// Actions defaults to DefaultActions.
	Actions []Action
	// EnterAction is what the Enter key commits. Zero value is ActionCopy.
	EnterAction Action
}

// Session owns one display's frame, selection state and window.
type Session struct {
	id       string
	display  screenshot.Display
	provider screenshot.Provider
	windows  WindowFactory
	actions  []Action
	enter    Action

	state         selection.State
	pointer       selection.Point
	pointerSeen   bool
	cursor        selection.CursorIcon
	cursorVisible bool
	cursorSet     bool
}

// New creates a session. Nothing is captured until Run.
func New(opts Options) *Session {
	actions := opts.Actions
	if len(actions) == 0 {
		actions = DefaultActions
	}
	return &Session{
		id:       uuid.NewString(),
		display:  opts.Display,
		provider: opts.Provider,
		windows:  opts.Windows,
		actions:  actions,
		enter:    opts.EnterAction,
	}
}

// ID is the session's log tag.
func (s *Session) ID() string { return s.id }

func (s *Session) logf(format string, args ...any) {
	log.Printf("session[%d %s]: %s", s.display.Index, s.id[:8], fmt.Sprintf(format, args...))
}

// Run captures the display, opens its window and processes input until the
// user finishes, the window closes, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) Outcome {
	out := Outcome{Display: s.display}

	if err := ctx.Err(); err != nil {
		out.Reason, out.Err = ReasonAborted, err
		return out
	}

	frame, err := s.provider.Capture(ctx, s.display)
	if err != nil {
		s.logf("capture failed: %v", err)
		var capErr *screenshot.CaptureError
		if !errors.As(err, &capErr) {
			err = &screenshot.CaptureError{Display: s.display, Err: err}
		}
		if ctx.Err() != nil {
			out.Reason, out.Err = ReasonAborted, err
			return out
		}
		out.Reason, out.Err = ReasonFailed, err
		return out
	}
	defer frame.Release()

	win, err := s.windows.Open(s.display, frame)
	if err != nil {
		s.logf("open window failed: %v", err)
		out.Reason, out.Err = ReasonFailed, &RenderError{Display: s.display, Err: err}
		return out
	}
	defer func() {
		if cerr := win.Close(); cerr != nil {
			s.logf("close window: %v", cerr)
		}
	}()

	s.state = selection.NewState(s.display.Width, s.display.Height)
	req := selection.Request{Cursor: selection.CursorCrosshair}
	s.applyCursor(win, req)
	if err := win.Render(s.scene(req)); err != nil {
		out.Reason, out.Err = ReasonFailed, &RenderError{Display: s.display, Err: err}
		return out
	}
	s.logf("started on %s", s.display)

	for {
		snap, err := win.NextInput(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logf("aborted: %v", ctx.Err())
				out.Reason, out.Err = ReasonAborted, ctx.Err()
				return out
			}
			out.Reason, out.Err = ReasonFailed, &RenderError{Display: s.display, Err: err}
			return out
		}

		if snap.CloseRequested {
			s.logf("window closed")
			out.Reason, out.Err = ReasonClosed, ErrCancelled
			return out
		}
		if snap.EscapePressed {
			s.logf("cancelled with escape")
			out.Reason, out.Err = ReasonCancelled, ErrCancelled
			return out
		}

		if action, ok := s.actionFor(snap); ok {
			if done, result := s.perform(action, frame, out); done {
				return result
			}
			continue
		}

		s.pointer, s.pointerSeen = snap.Pos, true
		var req selection.Request
		s.state, req = selection.Advance(s.state, selection.Input{
			Pos:      snap.Pos,
			Pressed:  snap.Pressed,
			Released: snap.Released,
			Reset:    snap.SecondaryPressed,
		})
		s.applyCursor(win, req)
		if err := win.Render(s.scene(req)); err != nil {
			s.logf("render failed: %v", err)
			out.Reason, out.Err = ReasonFailed, &RenderError{Display: s.display, Err: err}
			return out
		}
	}
}

// actionFor intercepts presses on the action bar and the Enter shortcut.
func (s *Session) actionFor(snap Snapshot) (Action, bool) {
	if s.state.Phase != selection.Selected || s.state.Moving() {
		return 0, false
	}
	if snap.Pressed {
		buttons := selection.ActionBar(s.state.Rect, len(s.actions))
		if i := selection.ButtonAt(buttons, snap.Pos); i >= 0 {
			return s.actions[i], true
		}
	}
	if snap.EnterPressed {
		return s.enter, true
	}
	return 0, false
}

// perform runs an action. done is false when the session should keep going,
// which happens for commits on an empty selection.
func (s *Session) perform(action Action, frame *screenshot.Frame, out Outcome) (bool, Outcome) {
	if action == ActionCancel {
		s.logf("cancelled from action bar")
		out.Reason, out.Err = ReasonCancelled, ErrCancelled
		return true, out
	}

	b := s.state.Rect.Normalized()
	crop, err := frame.Crop(CropRect(b, s.display.Scale))
	if err != nil {
		s.logf("ignoring %s on empty selection: %v", action, err)
		return false, out
	}
	s.logf("committed %s of %dx%d", action, crop.Bounds().Dx(), crop.Bounds().Dy())
	out.Reason = ReasonCommitted
	out.Action = action
	out.Crop = crop
	out.Bounds = b
	return true, out
}

func (s *Session) applyCursor(win Window, req selection.Request) {
	changed := !s.cursorSet || req.CursorVisible != s.cursorVisible
	if changed {
		win.SetCursorVisible(req.CursorVisible)
	}
	// Setting an icon would bring a hidden OS cursor back; it is applied
	// again once the cursor shows.
	if req.CursorVisible && (changed || req.Cursor != s.cursor) {
		win.SetCursor(req.Cursor)
	}
	s.cursor, s.cursorVisible, s.cursorSet = req.Cursor, req.CursorVisible, true
}

func (s *Session) scene(req selection.Request) Scene {
	sc := Scene{
		Display:       s.display,
		Phase:         s.state.Phase,
		HasRect:       s.state.HasRect(),
		Pointer:       s.pointer,
		ShowCrosshair: s.state.Phase == selection.Idle && s.pointerSeen,
		Handle:        req.Handle,
		HasHandle:     req.HasHandle,
		Moving:        s.state.Moving(),
		Actions:       s.actions,
		Cursor:        req.Cursor,
		CursorVisible: req.CursorVisible,
	}
	if sc.HasRect {
		sc.Bounds = s.state.Rect.Normalized()
	}
	if req.ShowActions {
		sc.Buttons = selection.ActionBar(s.state.Rect, len(s.actions))
	}
	return sc
}

// CropRect converts logical bounds to the physical pixel rectangle covering
// them. Degenerate bounds give an empty rectangle.
func CropRect(b selection.Bounds, scale float64) image.Rectangle {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	return image.Rect(
		int(math.Floor(b.Min.X*scale)),
		int(math.Floor(b.Min.Y*scale)),
		int(math.Ceil(b.Max.X*scale)),
		int(math.Ceil(b.Max.Y*scale)),
	)
}
