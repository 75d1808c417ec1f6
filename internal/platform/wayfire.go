package platform

import (
	"context"
	"log/slog"
	"math"

	"github.com/1broseidon/screenshot-tool/internal/wayfire"
)

// WayfireBackend adapts the Wayfire IPC client to the Backend interface.
type WayfireBackend struct {
	client *wayfire.Client
	logger *slog.Logger
}

var _ Backend = (*WayfireBackend)(nil)

// NewWayfireBackend connects lazily; each call opens its own IPC connection.
func NewWayfireBackend(client *wayfire.Client, logger *slog.Logger) *WayfireBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &WayfireBackend{client: client, logger: logger}
}

func (b *WayfireBackend) Name() string { return "wayfire" }

func (b *WayfireBackend) ListViews(ctx context.Context) ([]View, error) {
	raw, err := b.client.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	return viewsFromWayfire(raw), nil
}

func viewsFromWayfire(raw []wayfire.View) []View {
	views := make([]View, 0, len(raw))
	for _, v := range raw {
		views = append(views, View{
			ID:    v.ID,
			AppID: v.AppID,
			Title: v.Title,
			Bounds: Rect{
				X:      v.Geometry.X,
				Y:      v.Geometry.Y,
				Width:  v.Geometry.Width,
				Height: v.Geometry.Height,
			},
			Mapped:         v.Mapped,
			Minimized:      v.Minimized,
			Toplevel:       v.Type == "toplevel",
			OnWorkspace:    v.Layer == "workspace",
			FocusTimestamp: v.LastFocusTimestamp,
		})
	}
	return views
}

func (b *WayfireBackend) CursorPosition(ctx context.Context) (int, int, bool) {
	x, y, err := b.client.CursorPosition(ctx)
	if err != nil {
		b.logger.Debug("cursor position unavailable", "error", err)
		return 0, 0, false
	}
	return int(math.Round(x)), int(math.Round(y)), true
}

func (b *WayfireBackend) HideCursor(ctx context.Context) error {
	return b.client.HideCursor(ctx)
}

func (b *WayfireBackend) ShowCursor(ctx context.Context) error {
	return b.client.ShowCursor(ctx)
}

// FocusApp raises the first view with the given app id.
func (b *WayfireBackend) FocusApp(ctx context.Context, appID string) error {
	views, err := b.client.ListViews(ctx)
	if err != nil {
		return err
	}
	for _, v := range views {
		if v.AppID == appID {
			return b.client.FocusView(ctx, v.ID)
		}
	}
	return nil
}

func (b *WayfireBackend) Close() error { return nil }
