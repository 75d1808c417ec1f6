package platform

import (
	"context"
	"testing"

	"github.com/1broseidon/screenshot-tool/internal/wayfire"
)

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 400, Height: 300}

	tests := []struct {
		x, y float64
		want bool
	}{
		{100, 100, true},
		{499.9, 399.9, true},
		{500, 200, false},
		{200, 400, false},
		{99.5, 200, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	if !a.Overlaps(Rect{X: 50, Y: 50, Width: 100, Height: 100}) {
		t.Error("expected partial overlap")
	}
	if a.Overlaps(Rect{X: 100, Y: 0, Width: 10, Height: 10}) {
		t.Error("touching edges must not overlap")
	}
	if !(Rect{}).Empty() {
		t.Error("zero rect should be empty")
	}
}

func TestViewsFromWayfire(t *testing.T) {
	views := viewsFromWayfire([]wayfire.View{
		{
			ID: 3, AppID: "kitty", Title: "shell",
			Geometry: wayfire.Geometry{X: 5, Y: 6, Width: 7, Height: 8},
			Mapped:   true, Type: "toplevel", Layer: "workspace", LastFocusTimestamp: 99,
		},
		{ID: 4, AppID: "panel", Type: "background", Layer: "top"},
	})

	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	first := views[0]
	if !first.Toplevel || !first.OnWorkspace || !first.Mapped || first.FocusTimestamp != 99 {
		t.Fatalf("first = %+v", first)
	}
	if first.Bounds != (Rect{X: 5, Y: 6, Width: 7, Height: 8}) {
		t.Fatalf("bounds = %+v", first.Bounds)
	}
	if views[1].Toplevel || views[1].OnWorkspace {
		t.Fatalf("second = %+v, want non-toplevel off-workspace", views[1])
	}
}

func TestSelectNoneAndUnknown(t *testing.T) {
	b, err := Select(KindNone, nil)
	if err != nil {
		t.Fatalf("Select(none) error: %v", err)
	}
	if b.Name() != "none" {
		t.Fatalf("Name() = %q, want none", b.Name())
	}
	if _, _, ok := b.CursorPosition(context.Background()); ok {
		t.Fatal("noop backend must not report a cursor")
	}

	if _, err := Select("sway", nil); err == nil {
		t.Fatal("Select(sway) expected error")
	}
}

func TestSelectWayfireRequiresSocket(t *testing.T) {
	t.Setenv(wayfire.SocketEnv, "")
	if _, err := Select(KindWayfire, nil); err == nil {
		t.Fatal("Select(wayfire) expected error without WAYFIRE_SOCKET")
	}

	t.Setenv(wayfire.SocketEnv, "/nonexistent/wayfire.sock")
	b, err := Select(KindAuto, nil)
	if err != nil {
		t.Fatalf("Select(auto) error: %v", err)
	}
	if b.Name() != "wayfire" {
		t.Fatalf("Name() = %q, want wayfire", b.Name())
	}
}
