package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	xfixesReady bool
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// keysym lookups in the overlay need the keyboard mapping loaded
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// StopEventLoop makes EventLoop return after the event it is handling.
func (c *Connection) StopEventLoop() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// ensureXFixes negotiates the XFixes version required for cursor hiding.
func (c *Connection) ensureXFixes() error {
	if c.xfixesReady {
		return nil
	}
	conn := c.XUtil.Conn()
	if err := xfixes.Init(conn); err != nil {
		return fmt.Errorf("xfixes init failed: %w", err)
	}
	// HideCursor/ShowCursor require XFixes 4.0; the server ignores them
	// until the client has announced the version it speaks.
	if _, err := xfixes.QueryVersion(conn, 4, 0).Reply(); err != nil {
		return fmt.Errorf("xfixes version query failed: %w", err)
	}
	c.xfixesReady = true
	return nil
}
