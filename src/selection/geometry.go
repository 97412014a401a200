package selection

import "math"

const (
	// HitRadius is the distance, in logical pixels, within which a corner handle is grabbed.
	HitRadius = 10.0
	// CrosshairSize is the full length of each crosshair bar drawn while idle.
	CrosshairSize = 20.0
	// HandleRadius is the drawn radius of a corner handle dot.
	HandleRadius = 6.0
	// ButtonSize is the edge of one square action button.
	ButtonSize = 20.0
	// ButtonMargin is the gap between the bottom-right handle and the action bar.
	ButtonMargin = 10.0
)

// Point is a position in logical (DPI-scaled) coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is a selection spanned by two drag anchors. Start and End are not
// guaranteed to be the min/max corners; use Normalized for that.
type Rect struct {
	Start Point
	End   Point
}

// Bounds is an axis-aligned rectangle with Min <= Max on both axes.
type Bounds struct {
	Min Point
	Max Point
}

// Normalized returns the per-axis min/max bounds of r.
func (r Rect) Normalized() Bounds {
	return Bounds{
		Min: Point{X: math.Min(r.Start.X, r.End.X), Y: math.Min(r.Start.Y, r.End.Y)},
		Max: Point{X: math.Max(r.Start.X, r.End.X), Y: math.Max(r.Start.Y, r.End.Y)},
	}
}

// Rect converts b back into a drag rectangle anchored at Min.
func (b Bounds) Rect() Rect { return Rect{Start: b.Min, End: b.Max} }

// Width and Height are in logical pixels.
func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Empty reports whether b has zero area.
func (b Bounds) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Contains is inclusive on every edge.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Corner accessors, named as on screen with y growing downward.
func (b Bounds) TopLeft() Point     { return b.Min }
func (b Bounds) TopRight() Point    { return Point{X: b.Max.X, Y: b.Min.Y} }
func (b Bounds) BottomLeft() Point  { return Point{X: b.Min.X, Y: b.Max.Y} }
func (b Bounds) BottomRight() Point { return b.Max }

// Handle is the hit-test zone the pointer occupies relative to a selection.
type Handle int

const (
	TopLeft Handle = iota
	TopRight
	BottomLeft
	BottomRight
	Inner
	Outer
)

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case Inner:
		return "inner"
	case Outer:
		return "outer"
	default:
		return "unknown"
	}
}

// IsCorner reports whether h is one of the four resize corners.
func (h Handle) IsCorner() bool { return h >= TopLeft && h <= BottomRight }

// Corner returns the position of corner handle h on b. Non-corner handles
// return b.Min.
func (b Bounds) Corner(h Handle) Point {
	switch h {
	case TopRight:
		return b.TopRight()
	case BottomLeft:
		return b.BottomLeft()
	case BottomRight:
		return b.BottomRight()
	default:
		return b.TopLeft()
	}
}

// Opposite returns the diagonally opposite corner of h.
func (h Handle) Opposite() Handle {
	switch h {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomLeft:
		return TopRight
	case BottomRight:
		return TopLeft
	default:
		return h
	}
}

// HitTest classifies p against the normalized bounds of r. Corners are scanned
// in TopLeft, TopRight, BottomLeft, BottomRight order and only a strictly
// closer corner replaces an earlier one.
func HitTest(r Rect, p Point) Handle {
	b := r.Normalized()
	best := Outer
	bestDist := math.Inf(1)
	for _, h := range [...]Handle{TopLeft, TopRight, BottomLeft, BottomRight} {
		d := distance(p, b.Corner(h))
		if d <= HitRadius && d < bestDist {
			best, bestDist = h, d
		}
	}
	if best != Outer {
		return best
	}
	if b.Contains(p) {
		return Inner
	}
	return Outer
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CursorIcon is the pointer shape requested from the windowing layer.
type CursorIcon int

const (
	CursorArrow CursorIcon = iota
	CursorCrosshair
	CursorResizeNWSE
	CursorResizeNESW
	CursorMove
)

func (c CursorIcon) String() string {
	switch c {
	case CursorCrosshair:
		return "crosshair"
	case CursorResizeNWSE:
		return "resize-nwse"
	case CursorResizeNESW:
		return "resize-nesw"
	case CursorMove:
		return "move"
	default:
		return "arrow"
	}
}

// CursorFor maps every handle to exactly one icon.
func CursorFor(h Handle) CursorIcon {
	switch h {
	case TopLeft, BottomRight:
		return CursorResizeNWSE
	case TopRight, BottomLeft:
		return CursorResizeNESW
	case Inner:
		return CursorMove
	default:
		return CursorArrow
	}
}

// Segment is a line between two logical points.
type Segment struct {
	A Point
	B Point
}

// Crosshair returns the horizontal and vertical bars centred at p.
func Crosshair(p Point) [2]Segment {
	half := CrosshairSize / 2
	return [2]Segment{
		{A: Point{X: p.X - half, Y: p.Y}, B: Point{X: p.X + half, Y: p.Y}},
		{A: Point{X: p.X, Y: p.Y - half}, B: Point{X: p.X, Y: p.Y + half}},
	}
}

// ActionBar lays out count buttons in a row whose right edge lines up with the
// bottom-right corner of r, ButtonMargin below it.
func ActionBar(r Rect, count int) []Bounds {
	if count <= 0 {
		return nil
	}
	br := r.Normalized().BottomRight()
	x := br.X - float64(count)*ButtonSize
	y := br.Y + ButtonMargin
	buttons := make([]Bounds, count)
	for i := range buttons {
		left := x + float64(i)*ButtonSize
		buttons[i] = Bounds{
			Min: Point{X: left, Y: y},
			Max: Point{X: left + ButtonSize, Y: y + ButtonSize},
		}
	}
	return buttons
}

// ButtonAt returns the index of the button under p, or -1.
func ButtonAt(buttons []Bounds, p Point) int {
	for i, b := range buttons {
		if b.Contains(p) {
			return i
		}
	}
	return -1
}

// UV maps b into texture space for a surface of the given logical size.
// width and height come from display enumeration and are always > 0.
func UV(b Bounds, width, height float64) (lo, hi Point) {
	return Point{X: b.Min.X / width, Y: b.Min.Y / height},
		Point{X: b.Max.X / width, Y: b.Max.Y / height}
}
