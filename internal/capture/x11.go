package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
	"github.com/kbinani/screenshot"
)

// X11Capturer grabs pixels straight from the X server. Windows are located
// through the compositor backend and cropped from a screen grab.
type X11Capturer struct {
	Windows platform.WindowSource
	Lister  OutputLister
	Logger  *slog.Logger

	// grab is swapped in tests.
	grab func(image.Rectangle) (*image.RGBA, error)
}

var _ Capturer = (*X11Capturer)(nil)

// NewX11Capturer creates a capturer. windows and lister may be nil.
func NewX11Capturer(windows platform.WindowSource, lister OutputLister, logger *slog.Logger) *X11Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &X11Capturer{
		Windows: windows,
		Lister:  lister,
		Logger:  logger,
		grab:    screenshot.CaptureRect,
	}
}

func (c *X11Capturer) capture(ctx context.Context, r image.Rectangle) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, fmt.Errorf("capture area is empty")
	}
	img, err := c.grab(r)
	if err != nil {
		return nil, &Error{Op: "x11", Err: err}
	}
	return ToRGBA(img), nil
}

// Outputs prefers the backend's named outputs and falls back to the
// anonymous displays the X server reports.
func (c *X11Capturer) Outputs(ctx context.Context) ([]platform.Output, error) {
	if c.Lister != nil {
		outputs, err := c.Lister.Outputs(ctx)
		if err == nil && len(outputs) > 0 {
			return outputs, nil
		}
		if err != nil {
			c.Logger.Debug("named outputs unavailable", "error", err)
		}
	}

	n := screenshot.NumActiveDisplays()
	outputs := make([]platform.Output, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		outputs = append(outputs, platform.Output{
			Name:   fmt.Sprintf("display-%d", i),
			X:      b.Min.X,
			Y:      b.Min.Y,
			Width:  b.Dx(),
			Height: b.Dy(),
		})
	}
	return outputs, nil
}

// Fullscreen captures the union of all outputs (the root window) when
// monitor is empty, otherwise the named output.
func (c *X11Capturer) Fullscreen(ctx context.Context, monitor string) (*image.RGBA, error) {
	outputs, err := c.Outputs(ctx)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutput
	}

	var area image.Rectangle
	for _, o := range outputs {
		r := image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height)
		if monitor == "" {
			area = area.Union(r)
			continue
		}
		if o.Name == monitor {
			area = r
			break
		}
	}
	if area.Empty() {
		return nil, fmt.Errorf("%w: %q", ErrNoOutput, monitor)
	}
	return c.capture(ctx, area)
}

func (c *X11Capturer) Region(ctx context.Context, rect platform.Rect) (*image.RGBA, error) {
	return c.capture(ctx, rect.Image())
}

// Window captures the frontmost window whose app id matches.
func (c *X11Capturer) Window(ctx context.Context, appID string) (*image.RGBA, error) {
	if c.Windows == nil {
		return nil, fmt.Errorf("%w: no window source", ErrNoWindow)
	}
	views, err := c.Windows.ListViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	for _, w := range registry.FromViews(views) {
		if w.AppID == appID {
			return c.capture(ctx, w.Bounds().Image())
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoWindow, appID)
}
