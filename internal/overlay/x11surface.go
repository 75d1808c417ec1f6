package overlay

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/registry"
	"github.com/1broseidon/screenshot-tool/internal/selection"
	"github.com/1broseidon/screenshot-tool/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// X keysyms the overlay reacts to.
const (
	keysymSpace   = 0x0020
	keysymSysReq  = 0xff15
	keysymPrint   = 0xff61
	keysymReturn  = 0xff0d
	keysymKPEnter = 0xff8d
	keysymEscape  = 0xff1b
	keysymLeft    = 0xff51
	keysymUp      = 0xff52
	keysymRight   = 0xff53
	keysymDown    = 0xff54
)

const (
	grabAttempts = 50
	grabRetry    = 10 * time.Millisecond
	eventBuffer  = 256
)

// X11Surface shows the overlay as an override-redirect window covering the
// root window and grabs keyboard and pointer while open.
type X11Surface struct {
	conn   *x11.Connection
	logger *slog.Logger

	win    *xwindow.Window
	ximg   *xgraphics.Image
	events chan selection.Event
	done   chan struct{}

	closeOnce sync.Once
}

var _ Surface = (*X11Surface)(nil)

// NewX11Surface opens a dedicated X connection for the overlay window.
func NewX11Surface(logger *slog.Logger) (*X11Surface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Surface{conn: conn, logger: logger}, nil
}

func (s *X11Surface) Open(width, height int) (<-chan selection.Event, error) {
	xu := s.conn.XUtil

	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window: %w", err)
	}
	mask := xproto.EventMaskExposure | xproto.EventMaskPointerMotion |
		xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
		xproto.EventMaskKeyPress
	// Value list order follows the mask bit order: back pixel, override
	// redirect, event mask.
	err = win.CreateChecked(s.conn.Root, 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		0, 1, uint32(mask))
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}
	s.win = win

	// Window managers and compositor rules match on these.
	_ = icccm.WmClassSet(xu, win.Id, &icccm.WmClass{Instance: registry.SelfAppID, Class: registry.SelfAppID})
	_ = ewmh.WmNameSet(xu, win.Id, "Screenshot Tool")

	s.ximg = xgraphics.New(xu, image.Rect(0, 0, width, height))
	if err := s.ximg.XSurfaceSet(win.Id); err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create overlay pixmap: %w", err)
	}

	s.events = make(chan selection.Event, eventBuffer)
	s.done = make(chan struct{})
	s.connectHandlers()

	win.Map()
	xproto.ConfigureWindow(xu.Conn(), win.Id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	if err := s.grab(); err != nil {
		s.destroy()
		return nil, err
	}

	go func() {
		s.conn.EventLoop()
		close(s.events)
	}()
	return s.events, nil
}

func (s *X11Surface) connectHandlers() {
	xu := s.conn.XUtil
	id := s.win.Id

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		s.send(selection.Motion{X: float64(ev.EventX), Y: float64(ev.EventY)})
	}).Connect(xu, id)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		s.send(selection.Motion{X: float64(ev.EventX), Y: float64(ev.EventY)})
		s.send(selection.ButtonPress{Button: int(ev.Detail)})
	}).Connect(xu, id)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		s.send(selection.Motion{X: float64(ev.EventX), Y: float64(ev.EventY)})
		s.send(selection.ButtonRelease{Button: int(ev.Detail)})
	}).Connect(xu, id)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		keysym := keybind.KeysymGet(xu, ev.Detail, 0)
		s.send(selection.KeyPress{Key: keyFromKeysym(uint32(keysym))})
	}).Connect(xu, id)

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			s.send(selection.Expose{})
		}
	}).Connect(xu, id)
}

// send hands an event to the controller unless the surface is closing.
func (s *X11Surface) send(ev selection.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *X11Surface) grab() error {
	conn := s.conn.XUtil.Conn()
	id := s.win.Id

	var kbStatus, ptrStatus byte
	for i := 0; i < grabAttempts; i++ {
		reply, err := xproto.GrabKeyboard(conn, true, id, xproto.TimeCurrentTime,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
		if err == nil && reply.Status == xproto.GrabStatusSuccess {
			kbStatus = xproto.GrabStatusSuccess
			break
		}
		if reply != nil {
			kbStatus = reply.Status
		}
		time.Sleep(grabRetry)
	}
	if kbStatus != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", kbStatus)
	}

	ptrMask := uint16(xproto.EventMaskPointerMotion | xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease)
	for i := 0; i < grabAttempts; i++ {
		reply, err := xproto.GrabPointer(conn, true, id, ptrMask,
			xproto.GrabModeAsync, xproto.GrabModeAsync, id, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
		if err == nil && reply.Status == xproto.GrabStatusSuccess {
			ptrStatus = xproto.GrabStatusSuccess
			break
		}
		if reply != nil {
			ptrStatus = reply.Status
		}
		time.Sleep(grabRetry)
	}
	if ptrStatus != xproto.GrabStatusSuccess {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		return fmt.Errorf("pointer grab failed with status %d", ptrStatus)
	}

	s.logger.Debug("overlay: keyboard and pointer grabbed")
	return nil
}

func (s *X11Surface) Present(frame *image.RGBA) error {
	if s.ximg == nil || s.win == nil {
		return fmt.Errorf("surface not open")
	}
	copyToBGRA(s.ximg.Pix, s.ximg.Stride, frame)
	s.ximg.XDraw()
	s.ximg.XPaint(s.win.Id)
	return nil
}

func (s *X11Surface) Close() error {
	s.closeOnce.Do(func() {
		if s.done != nil {
			close(s.done)
		}
		s.destroy()
		if s.events != nil {
			s.conn.StopEventLoop()
		}
		s.conn.Close()
	})
	return nil
}

func (s *X11Surface) destroy() {
	conn := s.conn.XUtil.Conn()
	xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
	xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
	if s.win != nil {
		xevent.Detach(s.conn.XUtil, s.win.Id)
		s.win.Destroy()
		s.win = nil
	}
	if s.ximg != nil {
		s.ximg.Destroy()
		s.ximg = nil
	}
	s.conn.XUtil.Sync()
}

// keyFromKeysym maps an X keysym to the overlay's logical keys.
func keyFromKeysym(keysym uint32) selection.Key {
	switch keysym {
	case keysymLeft:
		return selection.KeyLeft
	case keysymRight:
		return selection.KeyRight
	case keysymUp:
		return selection.KeyUp
	case keysymDown:
		return selection.KeyDown
	case keysymEscape:
		return selection.KeyEscape
	case keysymReturn, keysymKPEnter:
		return selection.KeyEnter
	case keysymPrint, keysymSysReq, keysymSpace:
		return selection.KeyFullscreen
	default:
		return selection.KeyOther
	}
}

// copyToBGRA writes src into a BGRA buffer with the given stride, anchored
// at src's minimum point.
func copyToBGRA(dst []uint8, stride int, src *image.RGBA) {
	b := src.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * stride
		if di+w*4 > len(dst) || si+w*4 > len(src.Pix) {
			return
		}
		s := src.Pix[si : si+w*4]
		d := dst[di : di+w*4]
		for x := 0; x < w*4; x += 4 {
			d[x+0] = s[x+2]
			d[x+1] = s[x+1]
			d[x+2] = s[x+0]
			d[x+3] = s[x+3]
		}
	}
}
