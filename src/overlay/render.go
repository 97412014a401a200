package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screen-cropper/src/icons"
	"screen-cropper/src/selection"
	"screen-cropper/src/session"
)

// Style holds the overlay colours.
type Style struct {
	Dim         color.RGBA
	Border      color.RGBA
	Handle      color.RGBA
	Crosshair   color.RGBA
	LabelText   color.RGBA
	LabelBg     color.RGBA
	Button      color.RGBA
	ButtonHover color.RGBA
}

var DefaultStyle = Style{
	Dim:         color.RGBA{0, 0, 0, 110},
	Border:      color.RGBA{0, 120, 212, 255},
	Handle:      color.RGBA{255, 255, 255, 255},
	Crosshair:   color.RGBA{230, 230, 230, 230},
	LabelText:   color.RGBA{255, 255, 255, 255},
	LabelBg:     color.RGBA{0, 0, 0, 180},
	Button:      color.RGBA{40, 40, 40, 230},
	ButtonHover: color.RGBA{0, 120, 212, 255},
}

var actionIcons = map[session.Action]string{
	session.ActionCopy:   icons.Copy,
	session.ActionSave:   icons.Save,
	session.ActionCancel: icons.Cancel,
}

// Renderer composes scenes over one frozen frame. The frame is shown dimmed
// everywhere except inside the selection.
type Renderer struct {
	frame  *image.RGBA
	dimmed *image.RGBA
	scale  float64
	style  Style
}

// NewRenderer prepares a renderer for frame shown at the given display scale.
func NewRenderer(frame *image.RGBA, scale float64, style Style) *Renderer {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	dimmed := image.NewRGBA(frame.Bounds())
	draw.Draw(dimmed, dimmed.Bounds(), frame, frame.Bounds().Min, draw.Src)
	draw.Draw(dimmed, dimmed.Bounds(), &image.Uniform{style.Dim}, image.Point{}, draw.Over)
	return &Renderer{frame: frame, dimmed: dimmed, scale: scale, style: style}
}

// Bounds is the size of the buffers Compose expects.
func (r *Renderer) Bounds() image.Rectangle { return r.frame.Bounds() }

// Compose draws sc into dst, which must be at least Bounds() in size.
func (r *Renderer) Compose(dst *image.RGBA, sc session.Scene) {
	draw.Draw(dst, r.frame.Bounds(), r.dimmed, image.Point{}, draw.Src)

	if sc.HasRect {
		pr := session.CropRect(sc.Bounds, r.scale).Intersect(r.frame.Bounds())
		if !pr.Empty() {
			draw.Draw(dst, pr, r.frame, pr.Min, draw.Src)
		}
		r.strokeRect(dst, session.CropRect(sc.Bounds, r.scale), r.px(2), r.style.Border)
		for _, c := range []selection.Point{sc.Bounds.TopLeft(), sc.Bounds.TopRight(), sc.Bounds.BottomLeft(), sc.Bounds.BottomRight()} {
			fillCircle(dst, r.point(c), r.px(selection.HandleRadius), r.style.Handle)
		}
		r.drawLabel(dst, sc)
	}

	for i, b := range sc.Buttons {
		if i >= len(sc.Actions) {
			break
		}
		r.drawButton(dst, b, sc.Actions[i], b.Contains(sc.Pointer))
	}

	if sc.ShowCrosshair {
		for _, seg := range selection.Crosshair(sc.Pointer) {
			r.drawSegment(dst, seg, r.style.Crosshair)
		}
	}
}

// px converts a logical length to physical pixels, at least 1.
func (r *Renderer) px(v float64) int {
	n := int(math.Round(v * r.scale))
	if n < 1 {
		n = 1
	}
	return n
}

func (r *Renderer) point(p selection.Point) image.Point {
	return image.Pt(int(math.Round(p.X*r.scale)), int(math.Round(p.Y*r.scale)))
}

func (r *Renderer) strokeRect(dst *image.RGBA, rect image.Rectangle, width int, c color.RGBA) {
	u := &image.Uniform{c}
	edges := []image.Rectangle{
		image.Rect(rect.Min.X-width, rect.Min.Y-width, rect.Max.X+width, rect.Min.Y),
		image.Rect(rect.Min.X-width, rect.Max.Y, rect.Max.X+width, rect.Max.Y+width),
		image.Rect(rect.Min.X-width, rect.Min.Y, rect.Min.X, rect.Max.Y),
		image.Rect(rect.Max.X, rect.Min.Y, rect.Max.X+width, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Over)
	}
}

func (r *Renderer) drawSegment(dst *image.RGBA, s selection.Segment, c color.RGBA) {
	a, b := r.point(s.A), r.point(s.B)
	w := r.px(1)
	var rect image.Rectangle
	if a.Y == b.Y {
		rect = image.Rect(min(a.X, b.X), a.Y, max(a.X, b.X)+1, a.Y+w)
	} else {
		rect = image.Rect(a.X, min(a.Y, b.Y), a.X+w, max(a.Y, b.Y)+1)
	}
	draw.Draw(dst, rect.Intersect(dst.Bounds()), &image.Uniform{c}, image.Point{}, draw.Over)
}

func (r *Renderer) drawLabel(dst *image.RGBA, sc session.Scene) {
	crop := session.CropRect(sc.Bounds, r.scale)
	text := fmt.Sprintf("%d x %d", crop.Dx(), crop.Dy())

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.style.LabelText), Face: face}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()

	x := crop.Min.X
	y := crop.Min.Y - height - 6
	if y < 0 {
		y = crop.Min.Y + 4
	}
	bg := image.Rect(x, y, x+width+6, y+height+2)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), &image.Uniform{r.style.LabelBg}, image.Point{}, draw.Over)
	d.Dot = fixed.P(x+3, y+face.Metrics().Ascent.Ceil()+1)
	d.DrawString(text)
}

func (r *Renderer) drawButton(dst *image.RGBA, b selection.Bounds, action session.Action, hover bool) {
	rect := image.Rectangle{Min: r.point(b.Min), Max: r.point(b.Max)}
	bg := r.style.Button
	if hover {
		bg = r.style.ButtonHover
	}
	draw.Draw(dst, rect.Intersect(dst.Bounds()), &image.Uniform{bg}, image.Point{}, draw.Over)

	svg, ok := actionIcons[action]
	if !ok {
		return
	}
	pad := r.px(3)
	size := rect.Dx() - 2*pad
	if size <= 0 {
		return
	}
	icon, err := icons.Rasterize(svg, size)
	if err != nil {
		log.Printf("overlay: icon for %s: %v", action, err)
		return
	}
	at := rect.Min.Add(image.Pt(pad, pad))
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(icon.Bounds().Size())}, icon, image.Point{}, draw.Over)
}

func fillCircle(dst *image.RGBA, c image.Point, radius int, col color.RGBA) {
	bounds := dst.Bounds()
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > r2 {
				continue
			}
			p := image.Pt(c.X+x, c.Y+y)
			if p.In(bounds) {
				dst.SetRGBA(p.X, p.Y, col)
			}
		}
	}
}
