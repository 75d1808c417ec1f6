package platform

import (
	"context"
	"image"
)

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether (x, y) lies in [X, X+Width) x [Y, Y+Height).
func (r Rect) Contains(x, y float64) bool {
	return x >= float64(r.X) && x < float64(r.X+r.Width) &&
		y >= float64(r.Y) && y < float64(r.Y+r.Height)
}

// Overlaps reports whether the two rects share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width &&
		o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height &&
		o.Y < r.Y+r.Height
}

// Image converts the rect to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// View is a top-level window as reported by the compositor, before filtering.
type View struct {
	ID             uint32
	AppID          string
	Title          string
	Bounds         Rect
	Mapped         bool
	Minimized      bool
	Toplevel       bool
	OnWorkspace    bool
	FocusTimestamp int64
}

// Output describes a physical display.
type Output struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Primary bool `json:"primary,omitempty"`
}

// WindowSource lists the compositor's windows.
type WindowSource interface {
	ListViews(ctx context.Context) ([]View, error)
}

// CursorControl exposes the pointer position and system cursor visibility.
// All methods are best effort.
type CursorControl interface {
	CursorPosition(ctx context.Context) (x, y int, ok bool)
	HideCursor(ctx context.Context) error
	ShowCursor(ctx context.Context) error
}

// Backend bundles the compositor capabilities the tool consumes.
type Backend interface {
	WindowSource
	CursorControl
	Name() string
	Close() error
}
