// Package overlay runs one interactive capture session: it freezes a
// snapshot, feeds input through the selection machine, redraws after each
// change and hands the final image to the output sink.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/capture"
	"github.com/1broseidon/screenshot-tool/internal/events"
	"github.com/1broseidon/screenshot-tool/internal/magnifier"
	"github.com/1broseidon/screenshot-tool/internal/output"
	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
	"github.com/1broseidon/screenshot-tool/internal/render"
	"github.com/1broseidon/screenshot-tool/internal/selection"
)

const requestQueue = 8

var (
	// ErrClosed is returned by requests that arrive after the session ended.
	ErrClosed = errors.New("overlay closed")
	// ErrBusy is returned when the request queue is full.
	ErrBusy = errors.New("overlay request queue full")
)

// Deps are the collaborators of a session. Windows, Cursor and Focus may
// be nil.
type Deps struct {
	Capturer capture.Capturer
	Windows  platform.WindowSource
	Cursor   platform.CursorControl
	Focus    platform.Focuser
	Output   output.Saver
	Surface  Surface
	Events   *events.Emitter
	Logger   *slog.Logger
}

// Options tune a session.
type Options struct {
	// Monitor selects the output to capture; empty means primary.
	Monitor string
	// CaptureTimeout bounds the startup capture and a window capture.
	CaptureTimeout time.Duration
	Save           output.Options
	Magnifier      *magnifier.Magnifier
}

// Outcome reports how a session ended. Err carries an action-local
// failure (window capture or save) that did not prevent a clean exit.
type Outcome struct {
	Action selection.Action
	Result *output.Result
	Err    error
}

// Status is a point-in-time view of a running session.
type Status struct {
	Phase       string
	PointerX    int
	PointerY    int
	WindowCount int
	HoverAppID  string
}

// Controller owns one overlay session.
type Controller struct {
	deps Deps
	opts Options

	requests chan selection.Event

	mu     sync.Mutex
	status Status
	closed bool

	teardownOnce sync.Once
}

// New creates a controller. Requests may be sent before Run starts.
func New(deps Deps, opts Options) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = capture.DefaultTimeout
	}
	if opts.Magnifier == nil {
		opts.Magnifier = magnifier.New(0, 0)
	}
	return &Controller{
		deps:     deps,
		opts:     opts,
		requests: make(chan selection.Event, requestQueue),
		status:   Status{Phase: "starting"},
	}
}

// Fullscreen queues a full-screen capture. Safe from any goroutine.
func (c *Controller) Fullscreen() error {
	return c.enqueue(selection.FullscreenSignal{})
}

// Cancel queues a cancel. Safe from any goroutine.
func (c *Controller) Cancel() error {
	return c.enqueue(selection.KeyPress{Key: selection.KeyEscape})
}

func (c *Controller) enqueue(ev selection.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.requests <- ev:
		return nil
	default:
		return ErrBusy
	}
}

// Status returns the latest session state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) publish(m *selection.Machine) {
	s := m.State()
	st := Status{
		Phase:       s.Phase.String(),
		PointerX:    int(s.PointerX),
		PointerY:    int(s.PointerY),
		WindowCount: len(m.Windows()),
	}
	if s.Hover != nil {
		st.HoverAppID = s.Hover.AppID
	}
	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
}

// Run performs startup, drives the event loop until a terminal action and
// dispatches the result. A startup capture failure is returned before any
// window is shown.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	logger := c.deps.Logger
	defer c.markClosed()

	windows := registry.Query(ctx, c.deps.Windows, logger)

	snapshot, err := c.captureSnapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}
	b := snapshot.Bounds()
	width, height := b.Dx(), b.Dy()

	x, y := c.initialPointer(ctx, width, height)
	machine := selection.New(width, height, windows, x, y)
	renderer := render.New(snapshot, windows, c.opts.Magnifier)
	frame := renderer.NewFrame()
	c.publish(machine)

	c.hideCursor(ctx)
	input, err := c.deps.Surface.Open(width, height)
	if err != nil {
		c.teardown(ctx)
		return Outcome{}, fmt.Errorf("failed to open overlay: %w", err)
	}
	if c.deps.Focus != nil {
		if err := c.deps.Focus.FocusApp(ctx, registry.SelfAppID); err != nil {
			logger.Debug("could not focus overlay", "error", err)
		}
	}

	draw := func() {
		renderer.Draw(frame, machine.State())
		if err := c.deps.Surface.Present(frame); err != nil {
			logger.Debug("present failed", "error", err)
		}
	}
	draw()

	action := c.loop(ctx, machine, input, draw)
	c.publish(machine)
	logger.Debug("overlay resolved", "action", action.Kind.String())

	c.teardown(ctx)
	return c.dispatch(ctx, action, snapshot), nil
}

// loop applies events until one resolves the machine. Events already queued
// are drained before redrawing so pointer floods produce one frame.
func (c *Controller) loop(ctx context.Context, m *selection.Machine, input <-chan selection.Event, draw func()) selection.Action {
	cancel := selection.Action{Kind: selection.Cancel}

	for {
		var ev selection.Event
		select {
		case e, ok := <-input:
			if !ok {
				return cancel
			}
			ev = e
		case e := <-c.requests:
			ev = e
		case <-ctx.Done():
			return cancel
		}

		dirty := false
		for ev != nil {
			action, changed := m.Handle(ev)
			if action.Terminal() {
				return action
			}
			dirty = dirty || changed
			ev = nil

			select {
			case e := <-c.requests:
				ev = e
			case e, ok := <-input:
				if !ok {
					return cancel
				}
				ev = e
			default:
			}
		}

		if dirty {
			draw()
			c.publish(m)
		}
	}
}

func (c *Controller) captureSnapshot(ctx context.Context) (*image.RGBA, error) {
	cctx, cancel := context.WithTimeout(ctx, c.opts.CaptureTimeout)
	defer cancel()

	snapshot, err := c.deps.Capturer.Fullscreen(cctx, c.opts.Monitor)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	if snapshot.Bounds().Empty() {
		return nil, fmt.Errorf("failed to capture screen: empty image")
	}
	return capture.ToRGBA(snapshot), nil
}

// initialPointer uses the compositor's cursor position when it lies on the
// snapshot, else the centre.
func (c *Controller) initialPointer(ctx context.Context, width, height int) (float64, float64) {
	if c.deps.Cursor != nil {
		if x, y, ok := c.deps.Cursor.CursorPosition(ctx); ok {
			if x >= 0 && x < width && y >= 0 && y < height {
				return float64(x), float64(y)
			}
			c.deps.Logger.Debug("cursor outside snapshot, centring", "x", x, "y", y)
		}
	}
	return float64(width) / 2, float64(height) / 2
}

func (c *Controller) hideCursor(ctx context.Context) {
	if c.deps.Cursor == nil {
		return
	}
	if err := c.deps.Cursor.HideCursor(ctx); err != nil {
		c.deps.Logger.Debug("could not hide cursor", "error", err)
	}
}

// teardown closes the surface and restores the cursor, once.
func (c *Controller) teardown(ctx context.Context) {
	c.teardownOnce.Do(func() {
		c.markClosed()
		if err := c.deps.Surface.Close(); err != nil {
			c.deps.Logger.Debug("surface close failed", "error", err)
		}
		if c.deps.Cursor != nil {
			// The session context may already be cancelled.
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if err := c.deps.Cursor.ShowCursor(sctx); err != nil {
				c.deps.Logger.Debug("could not show cursor", "error", err)
			}
		}
	})
}

func (c *Controller) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) dispatch(ctx context.Context, action selection.Action, snapshot *image.RGBA) Outcome {
	out := Outcome{Action: action}

	var img image.Image
	switch action.Kind {
	case selection.CaptureRegion:
		cropped, err := capture.Crop(snapshot, action.Region)
		if err != nil {
			out.Err = c.fail("crop", err)
			return out
		}
		img = cropped

	case selection.CaptureWindow:
		if action.Window.AppID == "" {
			out.Err = c.fail("window_capture", fmt.Errorf("window %d has no app id", action.Window.ID))
			return out
		}
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CaptureTimeout)
		defer cancel()
		captured, err := c.deps.Capturer.Window(wctx, action.Window.AppID)
		if err != nil {
			out.Err = c.fail("window_capture", err)
			return out
		}
		img = captured

	default:
		return out
	}

	result, err := c.deps.Output.Save(img, c.opts.Save)
	if err != nil {
		out.Err = c.fail("save", err)
		return out
	}
	out.Result = &result
	return out
}

func (c *Controller) fail(stage string, err error) error {
	c.deps.Logger.Error("capture failed", "stage", stage, "error", err)
	if c.deps.Events != nil {
		c.deps.Events.Emit(events.ErrorHandled, map[string]any{
			"stage": stage,
			"error": err.Error(),
		})
	}
	return fmt.Errorf("%s: %w", stage, err)
}
