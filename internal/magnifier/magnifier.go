// Package magnifier renders the zoomed, gridded circular loupe that follows
// the pointer.
package magnifier

import (
	"fmt"
	"image"

	"github.com/1broseidon/screenshot-tool/internal/canvas"
	"golang.org/x/image/draw"
)

const (
	DefaultRadius = 225
	DefaultZoom   = 50
	// GridSize is the number of source pixels shown per axis.
	GridSize = 9
	// Offset is the gap between the pointer and the loupe.
	Offset = 40
)

var (
	gridColor   = canvas.Color(0.3, 0.3, 0.3, 0.6)
	centerColor = canvas.Color(1, 0.2, 0.2, 1)
	labelBG     = canvas.Color(0, 0, 0, 0.7)
)

// Magnifier draws a GridSize x GridSize neighbourhood of the snapshot,
// scaled by Zoom, inside a circle of Radius.
type Magnifier struct {
	Radius int
	Zoom   int
}

// New returns a magnifier, substituting defaults for non-positive values.
func New(radius, zoom int) *Magnifier {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Magnifier{Radius: radius, Zoom: zoom}
}

// Diameter is the loupe's bounding square side.
func (m *Magnifier) Diameter() int {
	return 2 * m.Radius
}

// Place returns the loupe's bounding square for a pointer at (px, py) on a
// width x height canvas. The loupe sits up and to the right of the pointer,
// flips across it when that would leave the canvas, and is finally clamped
// so the square lies inside the canvas whenever it fits.
func (m *Magnifier) Place(px, py float64, width, height int) image.Rectangle {
	d := float64(m.Diameter())
	x := px + Offset
	y := py - Offset - d

	if x+d > float64(width) {
		x = px - Offset - d
	}
	if x < 0 {
		x = Offset
	}
	if y < 0 {
		y = py + Offset
	}
	if y+d > float64(height) {
		y = float64(height) - d - Offset
	}

	ix := clamp(int(x), 0, width-m.Diameter())
	iy := clamp(int(y), 0, height-m.Diameter())
	return image.Rect(ix, iy, ix+m.Diameter(), iy+m.Diameter())
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SourceRect returns the snapshot pixels shown for a pointer at (px, py).
// It may extend past the snapshot's right and bottom edges.
func SourceRect(px, py float64) image.Rectangle {
	x := int(px) - GridSize/2
	y := int(py) - GridSize/2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return image.Rect(x, y, x+GridSize, y+GridSize)
}

// Draw renders the loupe for a pointer at (px, py) onto dst. The snapshot
// is only read.
func (m *Magnifier) Draw(dst draw.Image, snapshot image.Image, px, py float64) {
	bounds := dst.Bounds()
	box := m.Place(px, py, bounds.Dx(), bounds.Dy())
	box = box.Add(bounds.Min)

	lens := m.lens(snapshot, px, py)

	cx := float64(box.Min.X) + float64(m.Radius)
	cy := float64(box.Min.Y) + float64(m.Radius)

	canvas.StrokeCircle(dst, cx, cy, float64(m.Radius+2), 3, canvas.White)

	mask := canvas.Disc(float64(m.Radius), float64(m.Radius), float64(m.Radius))
	draw.DrawMask(dst, box, lens, image.Point{}, mask, image.Point{}, draw.Over)

	label := fmt.Sprintf("(%d, %d)", int(px), int(py))
	tx := int(cx) - canvas.TextWidth(label)/2
	canvas.Label(dst, label, tx, box.Max.Y+15, 5, labelBG)
}

// lens builds the square loupe content in its own coordinate space:
// scaled pixels, grid, and the center-pixel box.
func (m *Magnifier) lens(snapshot image.Image, px, py float64) *image.RGBA {
	d := m.Diameter()
	lens := image.NewRGBA(image.Rect(0, 0, d, d))

	src := SourceRect(px, py)
	// Pixels past the snapshot edge stay transparent.
	tile := image.NewRGBA(image.Rect(0, 0, GridSize, GridSize))
	visible := src.Intersect(snapshot.Bounds())
	if !visible.Empty() {
		draw.Draw(tile, visible.Sub(src.Min), snapshot, visible.Min, draw.Src)
	}

	span := GridSize * m.Zoom
	origin := image.Pt(m.Radius-span/2, m.Radius-span/2)
	grid := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(span, span))}
	draw.NearestNeighbor.Scale(lens, grid, tile, tile.Bounds(), draw.Src, nil)

	for i := 0; i <= GridSize; i++ {
		off := i * m.Zoom
		canvas.VLine(lens, grid.Min.X+off, grid.Min.Y, grid.Max.Y, 1, gridColor)
		canvas.HLine(lens, grid.Min.X, grid.Max.X, grid.Min.Y+off, 1, gridColor)
	}

	center := image.Rect(
		m.Radius-m.Zoom/2, m.Radius-m.Zoom/2,
		m.Radius-m.Zoom/2+m.Zoom, m.Radius-m.Zoom/2+m.Zoom,
	)
	canvas.StrokeRect(lens, center, 3, centerColor)
	return lens
}
