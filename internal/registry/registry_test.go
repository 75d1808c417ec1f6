package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/screenshot-tool/internal/platform"
)

type stubSource struct {
	views []platform.View
	err   error
}

func (s stubSource) ListViews(context.Context) ([]platform.View, error) {
	return s.views, s.err
}

func view(id uint32, app string, x, y, w, h int, focus int64) platform.View {
	return platform.View{
		ID: id, AppID: app, Title: app,
		Bounds:         platform.Rect{X: x, Y: y, Width: w, Height: h},
		Mapped:         true,
		Toplevel:       true,
		OnWorkspace:    true,
		FocusTimestamp: focus,
	}
}

func TestAssignZOrderIsDensePermutationByFocus(t *testing.T) {
	windows := AssignZOrder([]WindowInfo{
		{ID: 1, FocusTimestamp: 100},
		{ID: 2, FocusTimestamp: 300},
		{ID: 3, FocusTimestamp: 200},
		{ID: 4, FocusTimestamp: 300},
		{ID: 5, FocusTimestamp: 0},
	})

	wantIDs := []uint32{2, 4, 3, 1, 5}
	if len(windows) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(windows), len(wantIDs))
	}
	for i, w := range windows {
		if w.ZOrder != i {
			t.Errorf("windows[%d].ZOrder = %d, want %d", i, w.ZOrder, i)
		}
		if w.ID != wantIDs[i] {
			t.Errorf("windows[%d].ID = %d, want %d", i, w.ID, wantIDs[i])
		}
	}
}

func TestAssignZOrderDoesNotMutateInput(t *testing.T) {
	in := []WindowInfo{{ID: 1, FocusTimestamp: 1}, {ID: 2, FocusTimestamp: 2}}
	_ = AssignZOrder(in)
	if in[0].ID != 1 || in[0].ZOrder != 0 || in[1].ZOrder != 0 {
		t.Fatalf("input mutated: %+v", in)
	}
}

func TestFromViewsFilters(t *testing.T) {
	minimized := view(2, "minimized", 0, 0, 10, 10, 1)
	minimized.Minimized = true
	unmapped := view(3, "unmapped", 0, 0, 10, 10, 1)
	unmapped.Mapped = false
	panel := view(4, "panel", 0, 0, 10, 10, 1)
	panel.Toplevel = false
	otherWorkspace := view(5, "elsewhere", 0, 0, 10, 10, 1)
	otherWorkspace.OnWorkspace = false

	windows := FromViews([]platform.View{
		view(1, "firefox", 0, 0, 800, 600, 10),
		minimized,
		unmapped,
		panel,
		otherWorkspace,
		view(6, SelfAppID, 0, 0, 1920, 1080, 99),
		view(7, "", 0, 0, 100, 100, 1),
		view(8, "zero-width", 0, 0, 0, 100, 1),
		view(9, "zero-height", 0, 0, 100, 0, 1),
	})

	if len(windows) != 1 || windows[0].ID != 1 {
		t.Fatalf("FromViews() = %+v, want only window 1", windows)
	}
}

func TestFromViewsDefaultsTitle(t *testing.T) {
	v := view(1, "foot", 0, 0, 10, 10, 1)
	v.Title = ""
	windows := FromViews([]platform.View{v})
	if windows[0].Title != "Unknown" {
		t.Fatalf("Title = %q, want Unknown", windows[0].Title)
	}
}

func TestQueryFailsSoft(t *testing.T) {
	got := Query(context.Background(), stubSource{err: errors.New("socket closed")}, nil)
	if len(got) != 0 {
		t.Fatalf("Query() = %+v, want empty", got)
	}
	if got := Query(context.Background(), nil, nil); len(got) != 0 {
		t.Fatalf("Query(nil) = %+v, want empty", got)
	}
}

func TestFindWindowAt(t *testing.T) {
	windows := Query(context.Background(), stubSource{views: []platform.View{
		view(1, "back", 0, 0, 800, 600, 100),
		view(2, "front", 100, 100, 400, 300, 200),
	}}, nil)

	tests := []struct {
		name   string
		x, y   float64
		wantID uint32
		wantOK bool
	}{
		{"overlap picks frontmost", 200, 200, 2, true},
		{"only back window", 50, 50, 1, true},
		{"front right edge is exclusive", 500, 200, 1, true},
		{"outside all", 900, 700, 0, false},
		{"back bottom edge is exclusive", 50, 600, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindWindowAt(tt.x, tt.y, windows)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Fatalf("ID = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestEndToEndZOrderScenario(t *testing.T) {
	windows := AssignZOrder([]WindowInfo{
		{ID: 1, AppID: "one", X: 0, Y: 0, Width: 800, Height: 600, FocusTimestamp: 100},
		{ID: 2, AppID: "two", X: 100, Y: 100, Width: 400, Height: 300, FocusTimestamp: 200},
	})

	z := map[uint32]int{}
	for _, w := range windows {
		z[w.ID] = w.ZOrder
	}
	if z[2] != 0 || z[1] != 1 {
		t.Fatalf("z-order = %v, want window 2 front", z)
	}
	hit, ok := FindWindowAt(200, 200, windows)
	if !ok || hit.AppID != "two" {
		t.Fatalf("FindWindowAt(200,200) = %+v, %v", hit, ok)
	}
}
