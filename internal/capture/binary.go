package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/platform"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultListTimeout = 5 * time.Second
)

// ListedOutput is an entry of `wayland-capture --list --json`.
type ListedOutput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// ListedWindow is a capturable window reported by the binary.
type ListedWindow struct {
	AppID string `json:"app_id"`
	Title string `json:"title"`
}

// Listing is the binary's --list --json document.
type Listing struct {
	Outputs []ListedOutput `json:"outputs"`
	Windows []ListedWindow `json:"windows"`
}

// BinaryCapturer shells out to the wayland-capture helper, which writes a
// PNG to a temporary file.
type BinaryCapturer struct {
	Path        string
	Timeout     time.Duration
	ListTimeout time.Duration
	// TempDir holds in-flight capture files; empty means os.TempDir().
	TempDir string
	Logger  *slog.Logger
}

var _ Capturer = (*BinaryCapturer)(nil)

// NewBinaryCapturer creates a capturer for the helper at path.
func NewBinaryCapturer(path string, timeout time.Duration, logger *slog.Logger) *BinaryCapturer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BinaryCapturer{
		Path:        path,
		Timeout:     timeout,
		ListTimeout: DefaultListTimeout,
		Logger:      logger,
	}
}

// run executes the helper and returns its stdout. Failures are mapped to
// ErrTimeout, ErrNotFound or *Error.
func (c *BinaryCapturer) run(ctx context.Context, op string, timeout time.Duration, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Helpers that fork must not keep Wait blocked on inherited pipes.
	cmd.WaitDelay = time.Second

	c.Logger.Debug("running capture helper", "op", op, "args", args)
	err := cmd.Run()
	switch {
	case err == nil:
		return stdout.Bytes(), nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%s: %w", op, ErrTimeout)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%s: %w: %s", op, ErrNotFound, c.Path)
	default:
		return nil, &Error{Op: op, Stderr: stderr.String(), Err: err}
	}
}

// List returns the helper's outputs and windows.
func (c *BinaryCapturer) List(ctx context.Context) (*Listing, error) {
	out, err := c.run(ctx, "list", c.ListTimeout, "--list", "--json")
	if err != nil {
		return nil, err
	}
	var listing Listing
	if err := json.Unmarshal(out, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse output list: %w", err)
	}
	return &listing, nil
}

func (c *BinaryCapturer) Outputs(ctx context.Context) ([]platform.Output, error) {
	listing, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make([]platform.Output, 0, len(listing.Outputs))
	for _, o := range listing.Outputs {
		outputs = append(outputs, platform.Output{Name: o.Name, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height})
	}
	return outputs, nil
}

// primaryOutput returns the first listed output.
func (c *BinaryCapturer) primaryOutput(ctx context.Context) (string, error) {
	outputs, err := c.Outputs(ctx)
	if err != nil {
		c.Logger.Warn("could not list outputs", "error", err)
		return "", ErrNoOutput
	}
	if len(outputs) == 0 || outputs[0].Name == "" {
		return "", ErrNoOutput
	}
	return outputs[0].Name, nil
}

func (c *BinaryCapturer) Fullscreen(ctx context.Context, monitor string) (*image.RGBA, error) {
	if monitor == "" {
		name, err := c.primaryOutput(ctx)
		if err != nil {
			return nil, err
		}
		monitor = name
	}
	return c.captureToFile(ctx, "screen", "--output", monitor)
}

func (c *BinaryCapturer) Region(ctx context.Context, rect platform.Rect) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("region must have positive size")
	}
	name, err := c.primaryOutput(ctx)
	if err != nil {
		return nil, err
	}
	region := fmt.Sprintf("%d,%d,%d,%d", rect.X, rect.Y, rect.Width, rect.Height)
	return c.captureToFile(ctx, "region", "--output", name, "--region", region)
}

func (c *BinaryCapturer) Window(ctx context.Context, appID string) (*image.RGBA, error) {
	if appID == "" {
		return nil, fmt.Errorf("window capture requires an app id")
	}
	return c.captureToFile(ctx, "window", "--window", appID)
}

// captureToFile runs the helper with --output-file pointing at a fresh temp
// file and decodes the result. The file is removed on every path.
func (c *BinaryCapturer) captureToFile(ctx context.Context, op string, args ...string) (*image.RGBA, error) {
	tmp, err := os.CreateTemp(c.TempDir, "capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	args = append(args, "--output-file", path)
	if _, err := c.run(ctx, op, c.Timeout, args...); err != nil {
		return nil, err
	}
	return DecodeFile(path)
}
