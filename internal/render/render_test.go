package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/1broseidon/screenshot-tool/internal/registry"
	"github.com/1broseidon/screenshot-tool/internal/selection"
)

var grey = color.RGBA{R: 100, G: 100, B: 100, A: 255}

func greySnapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	for y := 0; y < 1080; y++ {
		for x := 0; x < 1920; x++ {
			img.SetRGBA(x, y, grey)
		}
	}
	return img
}

func scenarioWindows() []registry.WindowInfo {
	return registry.AssignZOrder([]registry.WindowInfo{
		{ID: 1, AppID: "back", X: 0, Y: 0, Width: 800, Height: 600, FocusTimestamp: 100},
		{ID: 2, AppID: "front", X: 100, Y: 100, Width: 400, Height: 300, FocusTimestamp: 200},
	})
}

func hoverOf(windows []registry.WindowInfo, id uint32) *registry.WindowInfo {
	for _, w := range windows {
		if w.ID == id {
			w := w
			return &w
		}
	}
	return nil
}

func TestHighlightDoesNotBleedOverFrontWindows(t *testing.T) {
	snapshot := greySnapshot()
	windows := scenarioWindows()
	r := New(snapshot, windows, nil)
	frame := r.NewFrame()

	r.Draw(frame, selection.State{
		PointerX: 1700, PointerY: 1000,
		Phase: selection.Idle,
		Hover: hoverOf(windows, 1),
	})

	if got := frame.RGBAAt(300, 300); got != grey {
		t.Fatalf("front window pixel = %+v, want untouched %+v", got, grey)
	}
	tinted := frame.RGBAAt(600, 450)
	if tinted == grey || tinted.B <= tinted.R {
		t.Fatalf("hovered window pixel = %+v, want blue tint", tinted)
	}
	if got := frame.RGBAAt(1500, 1000); got != grey {
		t.Fatalf("pixel outside hovered window = %+v, want untouched", got)
	}
	// 3px border on the hovered window's right edge.
	if got := frame.RGBAAt(800, 300); got.B != 255 {
		t.Fatalf("border pixel = %+v, want accent", got)
	}
}

func TestHighlightOfFrontWindowCoversItFully(t *testing.T) {
	snapshot := greySnapshot()
	windows := scenarioWindows()
	r := New(snapshot, windows, nil)
	frame := r.NewFrame()

	r.Draw(frame, selection.State{
		PointerX: 1700, PointerY: 1000,
		Phase: selection.Idle,
		Hover: hoverOf(windows, 2),
	})

	if got := frame.RGBAAt(300, 300); got == grey {
		t.Fatal("front window should be tinted when hovered")
	}
	if got := frame.RGBAAt(700, 500); got != grey {
		t.Fatalf("back window pixel = %+v, want untouched", got)
	}
}

func TestSelectionDimsOutsideOnly(t *testing.T) {
	snapshot := greySnapshot()
	windows := scenarioWindows()
	r := New(snapshot, windows, nil)
	frame := r.NewFrame()

	r.Draw(frame, selection.State{
		PointerX: 600, PointerY: 900,
		Phase:  selection.Dragging,
		StartX: 300, StartY: 700,
		// Hover is ignored while dragging.
		Hover: hoverOf(windows, 1),
	})

	if got := frame.RGBAAt(350, 750); got != grey {
		t.Fatalf("pixel inside selection = %+v, want untouched", got)
	}
	outside := frame.RGBAAt(1500, 1000)
	if outside.R >= grey.R {
		t.Fatalf("pixel outside selection = %+v, want dimmed", outside)
	}
	if got := frame.RGBAAt(1300, 200); got != outside {
		t.Fatalf("pixel over hovered window = %+v, want plain dim %+v", got, outside)
	}
	if got := frame.RGBAAt(300, 800); got.B != 255 {
		t.Fatalf("selection border pixel = %+v, want accent", got)
	}
}

func TestCrosshairAtPointer(t *testing.T) {
	r := New(greySnapshot(), nil, nil)
	frame := r.NewFrame()
	r.Draw(frame, selection.State{PointerX: 1000, PointerY: 800})

	if got := frame.RGBAAt(1010, 800); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("crosshair center line = %+v, want white", got)
	}
	if got := frame.RGBAAt(1010, 801); got != (color.RGBA{A: 255}) {
		t.Fatalf("crosshair outline = %+v, want black", got)
	}
}

func TestInstructionsDrawnTopLeft(t *testing.T) {
	r := New(greySnapshot(), nil, nil)
	frame := r.NewFrame()
	r.Draw(frame, selection.State{PointerX: 1700, PointerY: 1000})

	// Background box around the first line is darker than the snapshot.
	if got := frame.RGBAAt(16, 18); got.R >= grey.R {
		t.Fatalf("instruction background = %+v, want darkened", got)
	}
}

func TestDrawDoesNotMutateSnapshot(t *testing.T) {
	snapshot := greySnapshot()
	before := append([]byte(nil), snapshot.Pix...)
	windows := scenarioWindows()
	r := New(snapshot, windows, nil)

	frame := r.NewFrame()
	r.Draw(frame, selection.State{PointerX: 200, PointerY: 200, Hover: hoverOf(windows, 2)})
	r.Draw(frame, selection.State{PointerX: 600, PointerY: 900, Phase: selection.Dragging, StartX: 10, StartY: 10})

	if !bytes.Equal(before, snapshot.Pix) {
		t.Fatal("Draw mutated the snapshot")
	}
}
