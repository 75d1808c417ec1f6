// Package canvas holds the raster primitives the overlay draws with:
// alpha fills, rectangle outlines, rings, masks and bitmap text.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face is the bitmap font used for every label.
var Face font.Face = basicfont.Face7x13

var (
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.NRGBA{A: 255}
)

// Color converts unit-range channel values to an NRGBA color.
func Color(r, g, b, a float64) color.NRGBA {
	return color.NRGBA{R: unit(r), G: unit(g), B: unit(b), A: unit(a)}
}

func unit(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

// Fill composites c over r.
func Fill(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// Restore copies src pixels back into r, replacing whatever was drawn there.
func Restore(dst draw.Image, src image.Image, r image.Rectangle) {
	r = r.Intersect(dst.Bounds()).Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, src, r.Min, draw.Src)
}

// StrokeRect outlines r with a line of the given width centered on its edges.
func StrokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	if width <= 0 {
		return
	}
	half := width / 2
	outer := image.Rect(r.Min.X-half, r.Min.Y-half, r.Max.X+width-half, r.Max.Y+width-half)
	inner := outer.Inset(width)
	if inner.Empty() {
		Fill(dst, outer, c)
		return
	}
	Fill(dst, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), c)
	Fill(dst, image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), c)
	Fill(dst, image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), c)
	Fill(dst, image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), c)
}

// HLine draws a horizontal line from x0 to x1 centered on y.
func HLine(dst draw.Image, x0, x1, y, width int, c color.Color) {
	top := y - width/2
	Fill(dst, image.Rect(x0, top, x1, top+width), c)
}

// VLine draws a vertical line from y0 to y1 centered on x.
func VLine(dst draw.Image, x, y0, y1, width int, c color.Color) {
	left := x - width/2
	Fill(dst, image.Rect(left, y0, left+width, y1), c)
}

// Ring is an alpha mask covering the annulus between Inner and Outer radii
// around Center. Inner 0 makes it a disc.
type Ring struct {
	CX, CY       float64
	Inner, Outer float64
}

func (m Ring) ColorModel() color.Model { return color.AlphaModel }

func (m Ring) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(m.CX-m.Outer)),
		int(math.Floor(m.CY-m.Outer)),
		int(math.Ceil(m.CX+m.Outer))+1,
		int(math.Ceil(m.CY+m.Outer))+1,
	)
}

func (m Ring) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - m.CX
	dy := float64(y) + 0.5 - m.CY
	d := math.Sqrt(dx*dx + dy*dy)
	if d <= m.Outer && d >= m.Inner {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// Disc returns a filled circle mask.
func Disc(cx, cy, radius float64) Ring {
	return Ring{CX: cx, CY: cy, Outer: radius}
}

// StrokeCircle draws a circle outline of the given width centered on radius.
func StrokeCircle(dst draw.Image, cx, cy, radius, width float64, c color.Color) {
	mask := Ring{CX: cx, CY: cy, Inner: radius - width/2, Outer: radius + width/2}
	r := mask.Bounds().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, r.Min, draw.Over)
}

// TextWidth returns the advance width of s in Face.
func TextWidth(s string) int {
	return font.MeasureString(Face, s).Ceil()
}

// TextHeight returns the cap height used to size label backgrounds.
func TextHeight() int {
	return Face.Metrics().Ascent.Ceil()
}

// Text draws s with its baseline origin at (x, baseline).
func Text(dst draw.Image, s string, x, baseline int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: Face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

// Label draws white text over a translucent background box extended by pad
// pixels on every side. It returns the box.
func Label(dst draw.Image, s string, x, baseline, pad int, bg color.Color) image.Rectangle {
	w := TextWidth(s)
	h := TextHeight()
	box := image.Rect(x-pad, baseline-h-pad, x+w+pad, baseline+pad+Face.Metrics().Descent.Ceil())
	Fill(dst, box, bg)
	Text(dst, s, x, baseline, White)
	return box
}
