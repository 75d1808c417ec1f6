package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// allDesktops is the _NET_WM_DESKTOP value of sticky windows.
const allDesktops = 0xFFFFFFFF

// CurrentDesktop reads _NET_CURRENT_DESKTOP. ok is false when the window
// manager does not publish it.
func (c *Connection) CurrentDesktop() (desktop int, ok bool) {
	d, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, false
	}
	return int(d), true
}

// desktopOf reads _NET_WM_DESKTOP, mapping sticky and unknown to -1.
func (c *Connection) desktopOf(win xproto.Window) int {
	d, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil || d == allDesktops {
		return -1
	}
	return int(d)
}
