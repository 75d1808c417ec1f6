// Package registry holds the snapshot of on-screen windows the overlay
// hit-tests against.
package registry

import (
	"context"
	"log/slog"
	"sort"

	"github.com/1broseidon/screenshot-tool/internal/platform"
)

// SelfAppID is the app id of the overlay's own window.
const SelfAppID = "screenshot-tool"

// WindowInfo is one selectable window. ZOrder 0 is frontmost.
type WindowInfo struct {
	ID             uint32 `json:"id"`
	Title          string `json:"title"`
	AppID          string `json:"app_id"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	FocusTimestamp int64  `json:"focus_timestamp"`
	ZOrder         int    `json:"z_order"`
}

// Bounds returns the window's rectangle.
func (w WindowInfo) Bounds() platform.Rect {
	return platform.Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// Contains reports whether (x, y) lies inside the window's half-open bounds.
func (w WindowInfo) Contains(x, y float64) bool {
	return w.Bounds().Contains(x, y)
}

// FromViews keeps mapped, non-minimized toplevels on the active workspace
// with a non-empty app id and a positive size, dropping the overlay itself,
// and assigns z-order.
func FromViews(views []platform.View) []WindowInfo {
	windows := make([]WindowInfo, 0, len(views))
	for _, v := range views {
		if !v.Mapped || v.Minimized || !v.Toplevel || !v.OnWorkspace {
			continue
		}
		if v.AppID == "" || v.AppID == SelfAppID {
			continue
		}
		if v.Bounds.Empty() {
			continue
		}
		title := v.Title
		if title == "" {
			title = "Unknown"
		}
		windows = append(windows, WindowInfo{
			ID:             v.ID,
			Title:          title,
			AppID:          v.AppID,
			X:              v.Bounds.X,
			Y:              v.Bounds.Y,
			Width:          v.Bounds.Width,
			Height:         v.Bounds.Height,
			FocusTimestamp: v.FocusTimestamp,
		})
	}
	return AssignZOrder(windows)
}

// AssignZOrder sorts windows by focus timestamp, most recent first, keeping
// input order on ties, and numbers them 0..N-1.
func AssignZOrder(windows []WindowInfo) []WindowInfo {
	sorted := make([]WindowInfo, len(windows))
	copy(sorted, windows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FocusTimestamp > sorted[j].FocusTimestamp
	})
	for i := range sorted {
		sorted[i].ZOrder = i
	}
	return sorted
}

// Query lists windows once. Failures are logged and yield an empty list.
func Query(ctx context.Context, src platform.WindowSource, logger *slog.Logger) []WindowInfo {
	if logger == nil {
		logger = slog.Default()
	}
	if src == nil {
		return nil
	}
	views, err := src.ListViews(ctx)
	if err != nil {
		logger.Debug("window query failed, hit-testing disabled", "error", err)
		return nil
	}
	windows := FromViews(views)
	logger.Debug("window registry loaded", "windows", len(windows))
	return windows
}

// FindWindowAt returns the frontmost window containing (x, y).
// windows must be ordered by ascending ZOrder, as AssignZOrder returns them.
func FindWindowAt(x, y float64, windows []WindowInfo) (WindowInfo, bool) {
	for _, w := range windows {
		if w.Contains(x, y) {
			return w, true
		}
	}
	return WindowInfo{}, false
}
