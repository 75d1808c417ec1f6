// Package capture obtains pixel buffers of the screen, a region or a
// single window.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/1broseidon/screenshot-tool/internal/platform"
	"golang.org/x/image/draw"
)

var (
	// ErrTimeout is returned when a capture exceeds its deadline.
	ErrTimeout = errors.New("capture timed out")
	// ErrNotFound is returned when the capture binary cannot be executed.
	ErrNotFound = errors.New("capture binary not found")
	// ErrNoOutput is returned when no output can be chosen for a capture.
	ErrNoOutput = errors.New("could not determine output to capture")
	// ErrNoWindow is returned when no window matches the requested app id.
	ErrNoWindow = errors.New("window not found")
)

// Error reports a capture process that exited unsuccessfully.
type Error struct {
	Op     string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s capture failed", e.Op)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Capturer produces snapshots.
type Capturer interface {
	// Fullscreen captures the named output, or the primary one when monitor is empty.
	Fullscreen(ctx context.Context, monitor string) (*image.RGBA, error)
	Region(ctx context.Context, rect platform.Rect) (*image.RGBA, error)
	Window(ctx context.Context, appID string) (*image.RGBA, error)
	Outputs(ctx context.Context) ([]platform.Output, error)
}

// OutputLister reports physical outputs.
type OutputLister interface {
	Outputs(ctx context.Context) ([]platform.Output, error)
}

// DecodeFile reads an image file into an RGBA buffer anchored at the origin.
func DecodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to *image.RGBA with bounds starting at (0, 0),
// returning img itself when it already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Crop copies rect out of src. The rect is clipped to src; an empty
// intersection is an error.
func Crop(src *image.RGBA, rect platform.Rect) (*image.RGBA, error) {
	r := rect.Image().Add(src.Bounds().Min).Intersect(src.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region %dx%d+%d+%d is outside the snapshot", rect.Width, rect.Height, rect.X, rect.Y)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out, nil
}
