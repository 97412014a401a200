package coordinator

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"screen-cropper/src/screenshot"
	"screen-cropper/src/selection"
	"screen-cropper/src/session"
)

type fakeEnumerator struct {
	displays []screenshot.Display
	err      error
}

func (e fakeEnumerator) Displays() ([]screenshot.Display, error) { return e.displays, e.err }

// fakeProvider fails capture for the display indices in fail.
type fakeProvider struct {
	fail map[int]error
}

func (p fakeProvider) Capture(ctx context.Context, d screenshot.Display) (*screenshot.Frame, error) {
	if err := p.fail[d.Index]; err != nil {
		return nil, &screenshot.CaptureError{Display: d, Err: err}
	}
	return screenshot.FrameFromRGBA(image.NewRGBA(image.Rect(0, 0, d.PixelWidth, d.PixelHeight)))
}

type scriptedWindow struct {
	inputs []session.Snapshot
	delay  time.Duration
}

func (w *scriptedWindow) NextInput(ctx context.Context) (session.Snapshot, error) {
	if len(w.inputs) == 0 {
		<-ctx.Done()
		return session.Snapshot{}, ctx.Err()
	}
	if w.delay > 0 {
		select {
		case <-time.After(w.delay):
		case <-ctx.Done():
			return session.Snapshot{}, ctx.Err()
		}
	}
	s := w.inputs[0]
	w.inputs = w.inputs[1:]
	return s, nil
}

func (w *scriptedWindow) Render(session.Scene) error     { return nil }
func (w *scriptedWindow) SetCursor(selection.CursorIcon) {}
func (w *scriptedWindow) SetCursorVisible(bool)          {}
func (w *scriptedWindow) Close() error                   { return nil }

// fakeWindows hands each display its own scripted window. A display without a
// script gets a window that waits for cancellation.
type fakeWindows struct {
	mu      sync.Mutex
	scripts map[int][]session.Snapshot
	panicOn map[int]bool
	opened  []int
}

func (f *fakeWindows) Open(d screenshot.Display, frame *screenshot.Frame) (session.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, d.Index)
	if f.panicOn[d.Index] {
		panic("window backend exploded")
	}
	return &scriptedWindow{inputs: f.scripts[d.Index], delay: 10 * time.Millisecond}, nil
}

func twoDisplays() []screenshot.Display {
	return []screenshot.Display{
		screenshot.NewDisplay(0, image.Rect(0, 0, 400, 300), 1),
		screenshot.NewDisplay(1, image.Rect(400, 0, 800, 300), 1),
	}
}

func commitScript() []session.Snapshot {
	p := func(x, y float64) selection.Point { return selection.Point{X: x, Y: y} }
	return []session.Snapshot{
		{Pos: p(10, 10), Pressed: true},
		{Pos: p(110, 60), Released: true},
		{Pos: p(110, 60), EnterPressed: true},
	}
}

func TestPartialFailureContinue(t *testing.T) {
	windows := &fakeWindows{scripts: map[int][]session.Snapshot{1: commitScript()}}
	c := New(
		fakeEnumerator{displays: twoDisplays()},
		fakeProvider{fail: map[int]error{0: errors.New("device lost")}},
		windows,
		Options{Policy: PolicyContinue},
	)

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(report.Outcomes))
	}

	first := report.Outcomes[0]
	var capErr *screenshot.CaptureError
	if first.Reason != session.ReasonFailed || !errors.As(first.Err, &capErr) || capErr.Display.Index != 0 {
		t.Fatalf("display 0 outcome = %v / %v, want CaptureError failure", first.Reason, first.Err)
	}

	got, err := report.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got.Display.Index != 1 || got.Crop.Bounds().Dx() != 100 || got.Crop.Bounds().Dy() != 50 {
		t.Fatalf("committed outcome = display %d crop %v", got.Display.Index, got.Crop.Bounds())
	}
	for _, idx := range windows.opened {
		if idx == 0 {
			t.Fatal("window opened for display whose capture failed")
		}
	}
}

func TestPartialFailureAbort(t *testing.T) {
	c := New(
		fakeEnumerator{displays: twoDisplays()},
		fakeProvider{fail: map[int]error{0: errors.New("device lost")}},
		&fakeWindows{},
		Options{Policy: PolicyAbort},
	)

	report, err := c.Run(context.Background())
	var capErr *screenshot.CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("Run error = %v, want CaptureError", err)
	}
	if r := report.Outcomes[1].Reason; r != session.ReasonAborted {
		t.Fatalf("sibling ended %v, want aborted", r)
	}
}

func TestLinkedFinishCancelsSiblings(t *testing.T) {
	windows := &fakeWindows{scripts: map[int][]session.Snapshot{0: commitScript()}}
	c := New(fakeEnumerator{displays: twoDisplays()}, fakeProvider{}, windows, Options{Linked: true})

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Outcomes[0].Reason != session.ReasonCommitted {
		t.Fatalf("display 0 ended %v", report.Outcomes[0].Reason)
	}
	if report.Outcomes[1].Reason != session.ReasonAborted {
		t.Fatalf("display 1 ended %v, want aborted", report.Outcomes[1].Reason)
	}
}

func TestCancelEverywhereIsNothingSelected(t *testing.T) {
	esc := []session.Snapshot{{EscapePressed: true}}
	windows := &fakeWindows{scripts: map[int][]session.Snapshot{0: esc, 1: esc}}
	c := New(fakeEnumerator{displays: twoDisplays()}, fakeProvider{}, windows, Options{})

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := report.Result(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("Result error = %v, want ErrNothingSelected", err)
	}
}

func TestSessionPanicIsRecorded(t *testing.T) {
	esc := []session.Snapshot{{EscapePressed: true}}
	windows := &fakeWindows{
		scripts: map[int][]session.Snapshot{1: esc},
		panicOn: map[int]bool{0: true},
	}
	c := New(fakeEnumerator{displays: twoDisplays()}, fakeProvider{}, windows, Options{})

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Outcomes[0].Reason != session.ReasonFailed || report.Outcomes[0].Err == nil {
		t.Fatalf("panicking session = %+v", report.Outcomes[0])
	}
	if report.Outcomes[1].Reason != session.ReasonCancelled {
		t.Fatalf("sibling ended %v", report.Outcomes[1].Reason)
	}
}

func TestAllFailedReturnsError(t *testing.T) {
	c := New(
		fakeEnumerator{displays: twoDisplays()},
		fakeProvider{fail: map[int]error{0: errors.New("a"), 1: errors.New("b")}},
		&fakeWindows{},
		Options{},
	)
	if _, err := c.Run(context.Background()); err == nil {
		t.Fatal("expected error when every session fails")
	}
}

func TestEnumerationFailures(t *testing.T) {
	tests := []struct {
		name string
		enum fakeEnumerator
		opts Options
	}{
		{"enumerator error", fakeEnumerator{err: errors.New("no server")}, Options{}},
		{"no displays", fakeEnumerator{}, Options{}},
		{"filter matches nothing", fakeEnumerator{displays: twoDisplays()}, Options{Displays: []int{5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := &fakeWindows{}
			_, err := New(tt.enum, fakeProvider{}, windows, tt.opts).Run(context.Background())
			var enumErr *screenshot.EnumerationError
			if !errors.As(err, &enumErr) {
				t.Fatalf("err = %v, want EnumerationError", err)
			}
			if len(windows.opened) != 0 {
				t.Fatal("windows opened after enumeration failure")
			}
		})
	}
}

func TestDisplayFilter(t *testing.T) {
	esc := []session.Snapshot{{EscapePressed: true}}
	windows := &fakeWindows{scripts: map[int][]session.Snapshot{1: esc}}
	c := New(fakeEnumerator{displays: twoDisplays()}, fakeProvider{}, windows, Options{Displays: []int{1}})

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Display.Index != 1 {
		t.Fatalf("outcomes = %+v", report.Outcomes)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyContinue, false},
		{"continue", PolicyContinue, false},
		{" ABORT ", PolicyAbort, false},
		{"retry", PolicyContinue, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
