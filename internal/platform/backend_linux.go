//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/screenshot-tool/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{conn: conn, logger: logger}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// Conn exposes the X11 connection for the overlay surface.
func (b *LinuxBackend) Conn() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

func (b *LinuxBackend) Name() string { return "x11" }

// ListViews converts the EWMH stacking list into views. X11 has no focus
// timestamps, so the stacking index stands in for one: the top-most window
// reports the largest value.
func (b *LinuxBackend) ListViews(ctx context.Context) ([]View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clients, err := b.conn.StackedClients()
	if err != nil {
		return nil, err
	}

	currentDesktop, ok := b.conn.CurrentDesktop()
	if !ok {
		b.logger.Debug("current desktop unknown, assuming all windows visible")
		currentDesktop = -1
	}

	views := make([]View, 0, len(clients))
	for _, client := range clients {
		onWorkspace := currentDesktop < 0 || client.Desktop < 0 || client.Desktop == currentDesktop
		views = append(views, View{
			ID:             uint32(client.ID),
			AppID:          client.Class,
			Title:          client.Title,
			Bounds:         Rect{X: client.X, Y: client.Y, Width: client.Width, Height: client.Height},
			Mapped:         true,
			Minimized:      client.Hidden,
			Toplevel:       client.Normal,
			OnWorkspace:    onWorkspace,
			FocusTimestamp: int64(client.Stacking + 1),
		})
	}
	return views, nil
}

// CursorPosition queries the pointer on the root window.
func (b *LinuxBackend) CursorPosition(ctx context.Context) (int, int, bool) {
	if ctx.Err() != nil {
		return 0, 0, false
	}
	x, y, err := b.conn.PointerPosition()
	if err != nil {
		b.logger.Debug("pointer query failed", "error", err)
		return 0, 0, false
	}
	return x, y, true
}

func (b *LinuxBackend) HideCursor(context.Context) error {
	return b.conn.HideCursor()
}

func (b *LinuxBackend) ShowCursor(context.Context) error {
	return b.conn.ShowCursor()
}

// Outputs lists the active RandR monitors.
func (b *LinuxBackend) Outputs(context.Context) ([]Output, error) {
	monitors, err := b.conn.Monitors()
	if err != nil {
		return nil, err
	}
	outputs := make([]Output, 0, len(monitors))
	for _, m := range monitors {
		outputs = append(outputs, Output{
			Name:    m.Name,
			X:       m.X,
			Y:       m.Y,
			Width:   m.Width,
			Height:  m.Height,
			Primary: m.Primary,
		})
	}
	return outputs, nil
}

// Close disconnects from the X server.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func openX11(logger *slog.Logger) (Backend, error) {
	return NewLinuxBackendFromDisplay(logger)
}
