// Package output saves captured images and runs the post-save side effects:
// clipboard, sound, notification, lifecycle event, hooks and the scripting
// output modes.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/events"
	"github.com/1broseidon/screenshot-tool/internal/hooks"
)

// Options control one save.
type Options struct {
	Path    string
	Format  string
	Quality int

	Clipboard    bool
	Notification bool
	Sound        bool

	// Stdout prints the saved path; JSON prints the Result. JSON wins.
	Stdout bool
	JSON   bool

	// Silent disables clipboard, notification and sound and saves to the
	// silent output directory.
	Silent bool
}

// Normalized applies Silent and fills the format and quality defaults.
func (o Options) Normalized() Options {
	if o.Silent {
		o.Clipboard = false
		o.Notification = false
		o.Sound = false
	}
	if strings.TrimSpace(o.Format) == "" {
		o.Format = "png"
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Result describes a saved screenshot.
type Result struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Timestamp string `json:"timestamp"`
}

// JSON renders the result as a single line.
func (r Result) JSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}

// Saver is the output collaborator the overlay hands its image to.
type Saver interface {
	Save(img image.Image, opts Options) (Result, error)
}

// Sink is the default Saver.
type Sink struct {
	OutputDir       string
	SilentOutputDir string

	Clipboard Clipboard
	Notifier  Notifier
	Player    Player
	Hooks     *hooks.Runner
	Events    *events.Emitter
	Stdout    io.Writer
	Logger    *slog.Logger

	now     func() time.Time
	pending sync.WaitGroup
}

var _ Saver = (*Sink)(nil)

// NewSink creates a sink with the desktop integrations wired in.
func NewSink(outputDir, silentOutputDir string, hookRunner *hooks.Runner, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		OutputDir:       outputDir,
		SilentOutputDir: silentOutputDir,
		Clipboard:       DetectClipboard(),
		Notifier:        DBusNotifier{},
		Player:          ShutterPlayer{},
		Hooks:           hookRunner,
		Events:          events.Default(),
		Stdout:          os.Stdout,
		Logger:          logger,
	}
}

func (s *Sink) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// FileName returns the default name for a capture taken at t.
func FileName(t time.Time, ext string) string {
	return fmt.Sprintf("screenshot_%s.%s", t.Format("2006-01-02_15-04-05"), ext)
}

func (s *Sink) targetPath(opts Options, ext string, now time.Time) (string, error) {
	if opts.Path != "" {
		path := opts.Path
		if filepath.Ext(path) == "" {
			path += "." + ext
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		return path, nil
	}

	dir := s.OutputDir
	if opts.Silent {
		dir = s.SilentOutputDir
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, FileName(now, ext)), nil
}

// Save encodes img to disk and dispatches side effects. It returns once the
// file is written; clipboard, sound and notification finish in the
// background (see Wait).
func (s *Sink) Save(img image.Image, opts Options) (Result, error) {
	opts = opts.Normalized()
	now := s.clock()

	format, ext := ResolveFormat(opts.Format)
	if format == FormatPNG && !strings.EqualFold(opts.Format, "png") {
		s.logger().Debug("format not supported for encoding, saving png", "format", opts.Format)
		if opts.Path != "" && strings.EqualFold(filepath.Ext(opts.Path), "."+opts.Format) {
			opts.Path = strings.TrimSuffix(opts.Path, filepath.Ext(opts.Path)) + ".png"
		}
	}

	path, err := s.targetPath(opts, ext, now)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts.Quality); err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write screenshot: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	b := img.Bounds()
	result := Result{
		Path:      path,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Timestamp: now.Format(time.RFC3339),
	}

	s.dispatchDesktop(opts, result, img, format, buf.Bytes())

	if s.Events != nil {
		s.Events.Emit(events.ArtifactCreated, map[string]any{
			"file_path": result.Path,
			"file_type": "screenshot",
			"metadata": map[string]any{
				"width":     result.Width,
				"height":    result.Height,
				"format":    string(format),
				"timestamp": result.Timestamp,
			},
		})
	}

	if s.Hooks != nil {
		s.Hooks.NotifySave(result.Path, result.Width, result.Height, result.Timestamp)
	}

	s.report(opts, result)
	return result, nil
}

// dispatchDesktop runs clipboard, sound and notification in order on a
// background goroutine.
func (s *Sink) dispatchDesktop(opts Options, result Result, img image.Image, format Format, encoded []byte) {
	if !opts.Clipboard && !opts.Sound && !opts.Notification {
		return
	}
	logger := s.logger()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		if opts.Clipboard && s.Clipboard != nil {
			pngBytes := encoded
			if format != FormatPNG {
				var buf bytes.Buffer
				if err := Encode(&buf, img, FormatPNG, 0); err == nil {
					pngBytes = buf.Bytes()
				}
			}
			if err := s.Clipboard.WriteImage(pngBytes); err != nil {
				logger.Warn("failed to copy to clipboard", "error", err)
			} else {
				logger.Debug("copied to clipboard")
			}
		}
		if opts.Sound && s.Player != nil {
			if err := s.Player.Play(); err != nil {
				logger.Debug("could not play sound", "error", err)
			}
		}
		if opts.Notification && s.Notifier != nil {
			body := fmt.Sprintf("Saved to %s\n%dx%d pixels", filepath.Base(result.Path), result.Width, result.Height)
			if err := s.Notifier.Notify("Screenshot Captured", body); err != nil {
				logger.Debug("could not show notification", "error", err)
			}
		}
	}()
}

func (s *Sink) report(opts Options, result Result) {
	switch {
	case opts.JSON && s.Stdout != nil:
		fmt.Fprintln(s.Stdout, result.JSON())
	case opts.Stdout && s.Stdout != nil:
		fmt.Fprintln(s.Stdout, result.Path)
	default:
		s.logger().Info("screenshot saved", "path", result.Path)
	}
}

// Wait blocks until background side effects finish or timeout elapses.
// It reports whether they finished.
func (s *Sink) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Sink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
