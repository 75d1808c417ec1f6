package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// ClientWindow is a managed top-level window read from the EWMH stacking list.
type ClientWindow struct {
	ID       xproto.Window
	Class    string
	Title    string
	X        int
	Y        int
	Width    int
	Height   int
	Hidden   bool
	Normal   bool
	Desktop  int // -1 for sticky windows
	Stacking int // index in _NET_CLIENT_LIST_STACKING, bottom-most = 0
}

// StackedClients returns the managed windows in bottom-to-top stacking order.
func (c *Connection) StackedClients() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stacking client list: %w", err)
	}

	windows := make([]ClientWindow, 0, len(clients))
	for idx, windowID := range clients {
		x, y, w, h, ok := c.WindowRect(windowID)
		if !ok {
			continue
		}

		windows = append(windows, ClientWindow{
			ID:       windowID,
			Class:    c.WindowClass(windowID),
			Title:    c.WindowTitle(windowID),
			X:        x,
			Y:        y,
			Width:    w,
			Height:   h,
			Hidden:   c.isHidden(windowID),
			Normal:   c.IsNormalWindow(windowID),
			Desktop:  c.desktopOf(windowID),
			Stacking: idx,
		})
	}
	return windows, nil
}

// WindowRect returns a window's geometry in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (x, y, width, height int, ok bool) {
	conn := c.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	translate, err := xproto.TranslateCoordinates(conn, windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

// WindowClass returns the WM_CLASS class name, which serves as the app id on X11.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) isHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}
