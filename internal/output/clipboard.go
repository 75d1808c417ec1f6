package output

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"golang.design/x/clipboard"
)

// Clipboard receives PNG bytes.
type Clipboard interface {
	WriteImage(png []byte) error
}

// SystemClipboard owns the selection through the X11 clipboard. Contents
// stay available only while the process is alive or until a clipboard
// manager takes them over.
type SystemClipboard struct {
	once    sync.Once
	initErr error
	// changed is closed when another client takes ownership.
	changed <-chan struct{}
}

func (c *SystemClipboard) WriteImage(png []byte) error {
	c.once.Do(func() {
		c.initErr = clipboard.Init()
	})
	if c.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", c.initErr)
	}
	c.changed = clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Changed reports when ownership was lost; nil before the first write.
func (c *SystemClipboard) Changed() <-chan struct{} {
	return c.changed
}

// WLCopy pipes the image into wl-copy, which forks and keeps serving the
// selection after this process exits.
type WLCopy struct {
	Path string
}

func (c WLCopy) WriteImage(png []byte) error {
	cmd := exec.Command(c.Path, "-t", "image/png")
	cmd.Stdin = bytes.NewReader(png)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wl-copy failed: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// DetectClipboard prefers wl-copy on Wayland sessions.
func DetectClipboard() Clipboard {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		if path, err := exec.LookPath("wl-copy"); err == nil {
			return WLCopy{Path: path}
		}
	}
	return &SystemClipboard{}
}
