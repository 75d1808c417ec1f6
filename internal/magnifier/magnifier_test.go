package magnifier

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestPlaceDefaultOffset(t *testing.T) {
	m := New(0, 0)
	got := m.Place(960, 600, 1920, 1080)
	want := image.Rect(1000, 110, 1450, 560)
	if got != want {
		t.Fatalf("Place() = %v, want %v", got, want)
	}
}

func TestPlaceFlips(t *testing.T) {
	m := New(0, 0)

	// Too close to the right edge: flip to the pointer's left.
	if got := m.Place(1800, 600, 1920, 1080); got.Min.X != 1800-Offset-450 {
		t.Fatalf("horizontal flip Min.X = %d, want %d", got.Min.X, 1800-Offset-450)
	}
	// Too close to the top: flip below the pointer.
	if got := m.Place(960, 100, 1920, 1080); got.Min.Y != 100+Offset {
		t.Fatalf("vertical flip Min.Y = %d, want %d", got.Min.Y, 100+Offset)
	}
}

func TestPlaceAtOriginStaysOnCanvas(t *testing.T) {
	m := New(0, 0)
	got := m.Place(0, 0, 1920, 1080)
	canvasRect := image.Rect(0, 0, 1920, 1080)
	if !got.In(canvasRect) {
		t.Fatalf("Place(0,0) = %v, not inside %v", got, canvasRect)
	}
	if got.Min != image.Pt(Offset, Offset) {
		t.Fatalf("Place(0,0).Min = %v, want (40,40)", got.Min)
	}
}

func TestPlaceAlwaysInsideCanvas(t *testing.T) {
	m := New(0, 0)
	sizes := []image.Point{{1920, 1080}, {1280, 720}, {800, 600}, {3840, 2160}, {500, 500}}
	for _, size := range sizes {
		canvasRect := image.Rect(0, 0, size.X, size.Y)
		for px := 0; px <= size.X; px += 37 {
			for py := 0; py <= size.Y; py += 29 {
				got := m.Place(float64(px), float64(py), size.X, size.Y)
				if !got.In(canvasRect) {
					t.Fatalf("Place(%d,%d) on %v = %v, escapes canvas", px, py, size, got)
				}
			}
		}
	}
}

func TestPlaceOnCanvasSmallerThanLoupe(t *testing.T) {
	m := New(0, 0)
	got := m.Place(100, 100, 300, 200)
	if got.Min != (image.Point{}) {
		t.Fatalf("Place() on tiny canvas Min = %v, want origin", got.Min)
	}
}

func TestSourceRect(t *testing.T) {
	tests := []struct {
		px, py float64
		want   image.Rectangle
	}{
		{100.7, 50.2, image.Rect(96, 46, 105, 55)},
		{2, 1, image.Rect(0, 0, 9, 9)},
	}
	for _, tt := range tests {
		if got := SourceRect(tt.px, tt.py); got != tt.want {
			t.Errorf("SourceRect(%v, %v) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestDrawShowsCenterPixelWithoutMutatingSnapshot(t *testing.T) {
	snapshot := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	for i := range snapshot.Pix {
		snapshot.Pix[i] = 0x20
	}
	marker := color.RGBA{R: 0, G: 200, B: 0, A: 255}
	snapshot.SetRGBA(960, 600, marker)
	before := append([]byte(nil), snapshot.Pix...)

	dst := image.NewRGBA(snapshot.Bounds())
	copy(dst.Pix, snapshot.Pix)

	m := New(0, 0)
	m.Draw(dst, snapshot, 960, 600)

	if !bytes.Equal(before, snapshot.Pix) {
		t.Fatal("Draw mutated the snapshot")
	}

	box := m.Place(960, 600, 1920, 1080)
	center := box.Min.Add(image.Pt(m.Radius, m.Radius))
	if got := dst.RGBAAt(center.X, center.Y); got != marker {
		t.Fatalf("loupe center = %+v, want marker %+v", got, marker)
	}

	// A neighbour cell shows the neighbouring source pixel.
	neighbour := center.Add(image.Pt(m.Zoom, 0))
	if got := dst.RGBAAt(neighbour.X, neighbour.Y); got.G == 200 {
		t.Fatalf("neighbour cell = %+v, should not be the marker", got)
	}

	// White ring just outside the circle.
	ringPoint := image.Pt(box.Min.X+m.Radius, box.Min.Y-2)
	if got := dst.RGBAAt(ringPoint.X, ringPoint.Y); got.R != 255 || got.G != 255 {
		t.Fatalf("ring pixel %v = %+v, want white", ringPoint, got)
	}

	// Outside the loupe nothing changed.
	if got := dst.RGBAAt(10, 1000); got != snapshot.RGBAAt(10, 1000) {
		t.Fatalf("pixel outside loupe changed: %+v", got)
	}
}

func TestDrawNearBottomRightEdge(t *testing.T) {
	snapshot := image.NewRGBA(image.Rect(0, 0, 640, 480))
	dst := image.NewRGBA(snapshot.Bounds())
	m := New(100, 10)

	// Must not panic when the source window runs off the snapshot.
	m.Draw(dst, snapshot, 640, 480)
	m.Draw(dst, snapshot, 0, 0)
}
