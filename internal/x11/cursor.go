package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// PointerPosition returns the pointer location in root coordinates.
func (c *Connection) PointerPosition() (int, int, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	if !pointer.SameScreen {
		return 0, 0, fmt.Errorf("pointer is on another screen")
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}

// HideCursor hides the system cursor while this client stays connected.
func (c *Connection) HideCursor() error {
	if err := c.ensureXFixes(); err != nil {
		return err
	}
	return xfixes.HideCursorChecked(c.XUtil.Conn(), c.Root).Check()
}

// ShowCursor reverses HideCursor.
func (c *Connection) ShowCursor() error {
	if err := c.ensureXFixes(); err != nil {
		return err
	}
	return xfixes.ShowCursorChecked(c.XUtil.Conn(), c.Root).Check()
}
