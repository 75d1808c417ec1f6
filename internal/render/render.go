// Package render composites one overlay frame from the frozen snapshot and
// the current selection state.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/1broseidon/screenshot-tool/internal/canvas"
	"github.com/1broseidon/screenshot-tool/internal/magnifier"
	"github.com/1broseidon/screenshot-tool/internal/registry"
	"github.com/1broseidon/screenshot-tool/internal/selection"
	"golang.org/x/image/draw"
)

const (
	crosshairSize      = 15
	instructionX       = 20
	instructionY       = 30
	instructionLeading = 22
)

// Instructions is the help block drawn in the top-left corner.
var Instructions = []string{
	"Click window: Capture window",
	"Drag: Select area",
	"PrintScreen: Full screen",
	"Arrow keys: Fine adjust",
	"ESC/Right-click: Cancel",
}

var (
	accent        = canvas.Color(0.3, 0.6, 1.0, 1)
	highlightTint = canvas.Color(0.3, 0.6, 1.0, 0.3)
	dim           = canvas.Color(0, 0, 0, 0.5)
	dimensionBG   = canvas.Color(0, 0, 0, 0.8)
	instructionBG = canvas.Color(0, 0, 0, 0.7)
)

// Renderer draws frames. It only reads its inputs.
type Renderer struct {
	Snapshot     *image.RGBA
	Windows      []registry.WindowInfo
	Magnifier    *magnifier.Magnifier
	Instructions []string
}

// New creates a renderer with the default instruction block.
func New(snapshot *image.RGBA, windows []registry.WindowInfo, mag *magnifier.Magnifier) *Renderer {
	if mag == nil {
		mag = magnifier.New(0, 0)
	}
	return &Renderer{
		Snapshot:     snapshot,
		Windows:      windows,
		Magnifier:    mag,
		Instructions: Instructions,
	}
}

// NewFrame allocates a frame buffer matching the snapshot.
func (r *Renderer) NewFrame() *image.RGBA {
	return image.NewRGBA(r.Snapshot.Bounds())
}

// Draw renders state into dst, which must match the snapshot bounds.
// Later steps paint over earlier ones.
func (r *Renderer) Draw(dst *image.RGBA, state selection.State) {
	draw.Draw(dst, dst.Bounds(), r.Snapshot, r.Snapshot.Bounds().Min, draw.Src)

	if !state.Dragging() && state.Hover != nil {
		r.drawHighlight(dst, *state.Hover)
	}
	if state.Dragging() {
		r.drawSelection(dst, state.Selection().Image())
	}
	r.Magnifier.Draw(dst, r.Snapshot, state.PointerX, state.PointerY)
	drawCrosshair(dst, state.PointerX, state.PointerY)
	r.drawInstructions(dst)
}

// drawHighlight tints the hovered window, then repaints the snapshot over
// every window in front of it so the tint never covers them.
func (r *Renderer) drawHighlight(dst *image.RGBA, hovered registry.WindowInfo) {
	target := hovered.Bounds().Image()
	canvas.Fill(dst, target, highlightTint)

	for _, other := range r.Windows {
		if other.ZOrder >= hovered.ZOrder {
			continue
		}
		if !other.Bounds().Overlaps(hovered.Bounds()) {
			continue
		}
		canvas.Restore(dst, r.Snapshot, other.Bounds().Image().Intersect(target))
	}

	canvas.StrokeRect(dst, target, 3, accent)
}

// drawSelection dims the four bands around sel and outlines it.
func (r *Renderer) drawSelection(dst *image.RGBA, sel image.Rectangle) {
	b := dst.Bounds()
	canvas.Fill(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, sel.Min.Y), dim)
	canvas.Fill(dst, image.Rect(b.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y), dim)
	canvas.Fill(dst, image.Rect(sel.Max.X, sel.Min.Y, b.Max.X, sel.Max.Y), dim)
	canvas.Fill(dst, image.Rect(b.Min.X, sel.Max.Y, b.Max.X, b.Max.Y), dim)

	canvas.StrokeRect(dst, sel, 2, accent)

	text := fmt.Sprintf("%d x %d", sel.Dx(), sel.Dy())
	cx := sel.Min.X + sel.Dx()/2
	cy := sel.Min.Y + sel.Dy()/2
	tx := cx - canvas.TextWidth(text)/2
	baseline := cy + canvas.TextHeight()/2
	canvas.Label(dst, text, tx, baseline, 5, dimensionBG)
}

func drawCrosshair(dst *image.RGBA, px, py float64) {
	x := int(math.Round(px))
	y := int(math.Round(py))
	canvas.HLine(dst, x-crosshairSize, x+crosshairSize, y, 3, canvas.Black)
	canvas.VLine(dst, x, y-crosshairSize, y+crosshairSize, 3, canvas.Black)
	canvas.HLine(dst, x-crosshairSize, x+crosshairSize, y, 1, canvas.White)
	canvas.VLine(dst, x, y-crosshairSize, y+crosshairSize, 1, canvas.White)
}

func (r *Renderer) drawInstructions(dst *image.RGBA) {
	y := instructionY
	for _, line := range r.Instructions {
		canvas.Label(dst, line, instructionX, y, 5, instructionBG)
		y += instructionLeading
	}
}
