// Package selection implements the per-display selection state machine and
// the hit-testing geometry behind it. Everything here is pure: no I/O, no
// shared state, no failure modes.
package selection

// Phase is the selection lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Selecting
	Selected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// Input is one tick's worth of pointer state.
type Input struct {
	Pos      Point
	Pressed  bool // primary button went down this tick
	Released bool // primary button went up this tick
	Reset    bool // secondary button went down this tick
}

// State is owned by a single session and passed by value through Advance.
type State struct {
	Phase Phase
	Rect  Rect
	// Limit is the logical size of the display. A zero Limit disables
	// clamping while moving a selection.
	Limit Point

	moving bool
	grab   Point
	origin Bounds
}

// NewState returns an Idle state for a display of the given logical size.
func NewState(width, height float64) State {
	return State{Phase: Idle, Limit: Point{X: width, Y: height}}
}

// Moving reports whether a move drag of a Selected rectangle is in progress.
func (s State) Moving() bool { return s.moving }

// HasRect reports whether a rectangle exists in s.
func (s State) HasRect() bool { return s.Phase != Idle }

// Request is what the windowing layer is asked to do after a tick.
type Request struct {
	Handle        Handle
	HasHandle     bool
	Cursor        CursorIcon
	CursorVisible bool
	ShowActions   bool
}

// Advance applies one tick of input to s.
//
// Idle leaves only on a press, to Selecting. Selecting tracks the pointer on
// every tick and leaves only on a release, to Selected. Selected is frozen
// until a press (resize from a corner, move from inside, restart from
// outside) or a reset back to Idle.
func Advance(s State, in Input) (State, Request) {
	switch s.Phase {
	case Idle:
		if in.Pressed {
			s.Phase = Selecting
			s.Rect = Rect{Start: in.Pos, End: in.Pos}
		}
	case Selecting:
		s.Rect.End = in.Pos
		if in.Released {
			s.Phase = Selected
		}
	case Selected:
		s = advanceSelected(s, in)
	}
	return s, requestFor(s, in.Pos)
}

func advanceSelected(s State, in Input) State {
	if s.moving {
		s.Rect = s.translate(in.Pos)
		if in.Released {
			s.moving = false
		}
		return s
	}
	if in.Reset {
		return NewState(s.Limit.X, s.Limit.Y)
	}
	if !in.Pressed {
		return s
	}

	h := HitTest(s.Rect, in.Pos)
	switch {
	case h.IsCorner():
		// Resizing re-enters Selecting with the opposite corner pinned.
		b := s.Rect.Normalized()
		s.Phase = Selecting
		s.Rect = Rect{Start: b.Corner(h.Opposite()), End: in.Pos}
	case h == Inner:
		s.moving = true
		s.grab = in.Pos
		s.origin = s.Rect.Normalized()
	default:
		s.Phase = Selecting
		s.Rect = Rect{Start: in.Pos, End: in.Pos}
	}
	return s
}

func (s State) translate(p Point) Rect {
	dx := p.X - s.grab.X
	dy := p.Y - s.grab.Y
	b := s.origin
	if s.Limit.X > 0 {
		dx = clampShift(dx, b.Min.X, b.Max.X, s.Limit.X)
	}
	if s.Limit.Y > 0 {
		dy = clampShift(dy, b.Min.Y, b.Max.Y, s.Limit.Y)
	}
	return Rect{
		Start: Point{X: b.Min.X + dx, Y: b.Min.Y + dy},
		End:   Point{X: b.Max.X + dx, Y: b.Max.Y + dy},
	}
}

// clampShift keeps [lo+d, hi+d] inside [0, limit] when it fits.
func clampShift(d, lo, hi, limit float64) float64 {
	if hi+d > limit {
		d = limit - hi
	}
	if lo+d < 0 {
		d = -lo
	}
	return d
}

func requestFor(s State, pos Point) Request {
	if s.Phase == Idle {
		return Request{Cursor: CursorCrosshair, CursorVisible: false}
	}
	h := HitTest(s.Rect, pos)
	cursor := CursorFor(h)
	if s.moving {
		cursor = CursorMove
	}
	return Request{
		Handle:        h,
		HasHandle:     true,
		Cursor:        cursor,
		CursorVisible: true,
		ShowActions:   s.Phase == Selected && !s.moving,
	}
}
