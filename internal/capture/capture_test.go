package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/platform"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

// fakeHelper writes a shell script standing in for wayland-capture. Every
// invocation appends its argv to a log file.
func fakeHelper(t *testing.T) (path, logPath string) {
	t.Helper()
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.png")
	writePNG(t, fixture, 4, 3)
	logPath = filepath.Join(dir, "args.log")

	script := `#!/bin/sh
echo "$*" >> "` + logPath + `"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --list) echo '{"outputs":[{"name":"eDP-1","x":0,"y":0,"width":4,"height":3}],"windows":[{"app_id":"kitty","title":"shell"}]}'; exit 0;;
    --output-file) out="$2"; shift;;
    --window) if [ "$2" = "missing" ]; then echo "window not found: missing" >&2; exit 3; fi; shift;;
    --region) if [ "$2" = "9,9,9,9" ]; then exec sleep 5; fi; shift;;
  esac
  shift
done
cp "` + fixture + `" "$out"
`
	path = filepath.Join(dir, "wayland-capture")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write helper: %v", err)
	}
	return path, logPath
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func newTestCapturer(path string, tempDir string) *BinaryCapturer {
	c := NewBinaryCapturer(path, 2*time.Second, nil)
	c.TempDir = tempDir
	return c
}

func TestBinaryFullscreenUsesPrimaryOutput(t *testing.T) {
	helper, logPath := fakeHelper(t)
	tempDir := t.TempDir()
	c := newTestCapturer(helper, tempDir)

	img, err := c.Fullscreen(context.Background(), "")
	if err != nil {
		t.Fatalf("Fullscreen() error: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds = %v, want 4x3", img.Bounds())
	}
	if got := img.RGBAAt(1, 1); got.R != 200 {
		t.Fatalf("pixel = %+v", got)
	}

	calls := readLog(t, logPath)
	if len(calls) != 2 || calls[0] != "--list --json" {
		t.Fatalf("calls = %q", calls)
	}
	if !strings.HasPrefix(calls[1], "--output eDP-1 --output-file ") {
		t.Fatalf("capture call = %q", calls[1])
	}

	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestBinaryFullscreenNamedMonitorSkipsListing(t *testing.T) {
	helper, logPath := fakeHelper(t)
	c := newTestCapturer(helper, t.TempDir())

	if _, err := c.Fullscreen(context.Background(), "HDMI-A-1"); err != nil {
		t.Fatalf("Fullscreen() error: %v", err)
	}
	calls := readLog(t, logPath)
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "--output HDMI-A-1 ") {
		t.Fatalf("calls = %q", calls)
	}
}

func TestBinaryRegionArgs(t *testing.T) {
	helper, logPath := fakeHelper(t)
	c := newTestCapturer(helper, t.TempDir())

	if _, err := c.Region(context.Background(), platform.Rect{X: 10, Y: 20, Width: 30, Height: 40}); err != nil {
		t.Fatalf("Region() error: %v", err)
	}
	calls := readLog(t, logPath)
	if !strings.HasPrefix(calls[len(calls)-1], "--output eDP-1 --region 10,20,30,40 --output-file ") {
		t.Fatalf("region call = %q", calls[len(calls)-1])
	}

	if _, err := c.Region(context.Background(), platform.Rect{Width: 0, Height: 5}); err == nil {
		t.Fatal("Region() with empty rect expected error")
	}
}

func TestBinaryWindowFailureCarriesStderr(t *testing.T) {
	helper, _ := fakeHelper(t)
	tempDir := t.TempDir()
	c := newTestCapturer(helper, tempDir)

	_, err := c.Window(context.Background(), "missing")
	var capErr *Error
	if !errors.As(err, &capErr) {
		t.Fatalf("Window() error = %v, want *Error", err)
	}
	if capErr.Op != "window" || !strings.Contains(capErr.Stderr, "window not found") {
		t.Fatalf("error = %+v", capErr)
	}
	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 0 {
		t.Fatalf("temp files left behind after failure: %v", entries)
	}
}

func TestBinaryTimeout(t *testing.T) {
	helper, _ := fakeHelper(t)
	c := newTestCapturer(helper, t.TempDir())
	c.Timeout = 200 * time.Millisecond

	_, err := c.Region(context.Background(), platform.Rect{X: 9, Y: 9, Width: 9, Height: 9})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Region() error = %v, want ErrTimeout", err)
	}
}

func TestBinaryNotFound(t *testing.T) {
	c := newTestCapturer(filepath.Join(t.TempDir(), "no-such-binary"), t.TempDir())
	_, err := c.Window(context.Background(), "kitty")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Window() error = %v, want ErrNotFound", err)
	}
	if _, err := c.Fullscreen(context.Background(), ""); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Fullscreen() error = %v, want ErrNoOutput", err)
	}
}

func TestBinaryList(t *testing.T) {
	helper, _ := fakeHelper(t)
	c := newTestCapturer(helper, t.TempDir())

	listing, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(listing.Outputs) != 1 || listing.Outputs[0].Name != "eDP-1" {
		t.Fatalf("outputs = %+v", listing.Outputs)
	}
	if len(listing.Windows) != 1 || listing.Windows[0].AppID != "kitty" {
		t.Fatalf("windows = %+v", listing.Windows)
	}
}

func TestCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 80))
	src.SetRGBA(10, 10, color.RGBA{G: 255, A: 255})

	out, err := Crop(src, platform.Rect{X: 10, Y: 10, Width: 30, Height: 20})
	if err != nil {
		t.Fatalf("Crop() error: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if out.RGBAAt(0, 0).G != 255 {
		t.Fatalf("origin pixel = %+v", out.RGBAAt(0, 0))
	}

	clipped, err := Crop(src, platform.Rect{X: 90, Y: 70, Width: 50, Height: 50})
	if err != nil {
		t.Fatalf("Crop() clipped error: %v", err)
	}
	if clipped.Bounds().Dx() != 10 || clipped.Bounds().Dy() != 10 {
		t.Fatalf("clipped bounds = %v", clipped.Bounds())
	}

	if _, err := Crop(src, platform.Rect{X: 200, Y: 200, Width: 5, Height: 5}); err == nil {
		t.Fatal("Crop() outside snapshot expected error")
	}
}

func TestToRGBARebasesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(50, 50, 60, 55))
	src.SetNRGBA(50, 50, color.NRGBA{B: 255, A: 255})

	out := ToRGBA(src)
	if out.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if out.RGBAAt(0, 0).B != 255 {
		t.Fatalf("origin pixel = %+v", out.RGBAAt(0, 0))
	}
}

type stubLister struct{ outputs []platform.Output }

func (s stubLister) Outputs(context.Context) ([]platform.Output, error) { return s.outputs, nil }

type stubWindows struct{ views []platform.View }

func (s stubWindows) ListViews(context.Context) ([]platform.View, error) { return s.views, nil }

func newFakeX11(grabbed *[]image.Rectangle) *X11Capturer {
	c := NewX11Capturer(
		stubWindows{views: []platform.View{{
			ID: 1, AppID: "kitty", Mapped: true, Toplevel: true, OnWorkspace: true,
			Bounds: platform.Rect{X: 100, Y: 50, Width: 300, Height: 200},
		}}},
		stubLister{outputs: []platform.Output{
			{Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
			{Name: "HDMI-1", X: 1920, Y: 0, Width: 1280, Height: 1024},
		}},
		nil,
	)
	c.grab = func(r image.Rectangle) (*image.RGBA, error) {
		*grabbed = append(*grabbed, r)
		return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
	}
	return c
}

func TestX11CapturerAreas(t *testing.T) {
	var grabbed []image.Rectangle
	c := newFakeX11(&grabbed)
	ctx := context.Background()

	if _, err := c.Fullscreen(ctx, ""); err != nil {
		t.Fatalf("Fullscreen() error: %v", err)
	}
	if _, err := c.Fullscreen(ctx, "HDMI-1"); err != nil {
		t.Fatalf("Fullscreen(HDMI-1) error: %v", err)
	}
	if _, err := c.Window(ctx, "kitty"); err != nil {
		t.Fatalf("Window() error: %v", err)
	}
	if _, err := c.Region(ctx, platform.Rect{X: 5, Y: 6, Width: 7, Height: 8}); err != nil {
		t.Fatalf("Region() error: %v", err)
	}

	want := []image.Rectangle{
		image.Rect(0, 0, 3200, 1080),
		image.Rect(1920, 0, 3200, 1024),
		image.Rect(100, 50, 400, 250),
		image.Rect(5, 6, 12, 14),
	}
	if len(grabbed) != len(want) {
		t.Fatalf("grabbed = %v", grabbed)
	}
	for i := range want {
		if grabbed[i] != want[i] {
			t.Errorf("grab %d = %v, want %v", i, grabbed[i], want[i])
		}
	}
}

func TestX11CapturerErrors(t *testing.T) {
	var grabbed []image.Rectangle
	c := newFakeX11(&grabbed)
	ctx := context.Background()

	if _, err := c.Fullscreen(ctx, "VGA-9"); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Fullscreen(VGA-9) error = %v, want ErrNoOutput", err)
	}
	if _, err := c.Window(ctx, "firefox"); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("Window(firefox) error = %v, want ErrNoWindow", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.Region(cancelled, platform.Rect{Width: 1, Height: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Region() with cancelled ctx error = %v", err)
	}
	if len(grabbed) != 0 {
		t.Fatalf("no grabs expected, got %v", grabbed)
	}
}
