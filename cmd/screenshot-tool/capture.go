package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/capture"
	"github.com/1broseidon/screenshot-tool/internal/config"
	"github.com/1broseidon/screenshot-tool/internal/events"
	"github.com/1broseidon/screenshot-tool/internal/hooks"
	"github.com/1broseidon/screenshot-tool/internal/instance"
	"github.com/1broseidon/screenshot-tool/internal/ipc"
	"github.com/1broseidon/screenshot-tool/internal/magnifier"
	"github.com/1broseidon/screenshot-tool/internal/output"
	"github.com/1broseidon/screenshot-tool/internal/overlay"
	"github.com/1broseidon/screenshot-tool/internal/platform"
)

// sideEffectGrace bounds how long the process lingers after saving so the
// clipboard owner and notification can finish.
const sideEffectGrace = 3 * time.Second

type session struct {
	cfg      *config.Config
	opts     *cliOptions
	logger   *slog.Logger
	backend  platform.Backend
	capturer capture.Capturer
	sink     *output.Sink
	instance *instance.Manager
}

func newSession(cfg *config.Config, opts *cliOptions, logger *slog.Logger) (*session, error) {
	backend, err := platform.Select(cfg.Backend, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}

	sink := output.NewSink(cfg.OutputDir, cfg.SilentOutputDir, hooks.NewRunner(cfg.HooksDir, logger), logger)
	sink.Stdout = os.Stdout

	return &session{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		backend:  backend,
		capturer: newCapturer(cfg, backend, logger),
		sink:     sink,
		instance: instance.NewManager(cfg.LockFile, cfg.DoubleTapFile, cfg.DoubleTapWindow()),
	}, nil
}

// newCapturer prefers the external capture binary and falls back to
// grabbing pixels from the X server.
func newCapturer(cfg *config.Config, backend platform.Backend, logger *slog.Logger) capture.Capturer {
	if bin := cfg.CaptureBinary(); bin != "" {
		logger.Debug("using capture binary", "path", bin)
		return capture.NewBinaryCapturer(bin, cfg.CaptureTimeout(), logger)
	}
	logger.Debug("no capture binary found, using x11 capture")
	lister, _ := backend.(capture.OutputLister)
	return capture.NewX11Capturer(backend, lister, logger)
}

func (s *session) close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Debug("backend close failed", "error", err)
	}
}

func (s *session) saveOptions() output.Options {
	format := s.opts.format
	if format == "" {
		format = s.cfg.DefaultFormat
	}
	quality := s.opts.quality
	if quality == 0 {
		quality = s.cfg.DefaultQuality
	}
	return output.Options{
		Path:         s.opts.output,
		Format:       format,
		Quality:      quality,
		Clipboard:    s.cfg.EnableClipboard && !s.opts.noClipboard,
		Notification: s.cfg.EnableNotification && !s.opts.noNotification,
		Sound:        s.cfg.EnableSound && !s.opts.noSound,
		Stdout:       s.opts.stdout,
		JSON:         s.opts.json,
		Silent:       s.opts.silent,
	}
}

func runCapture(cfg *config.Config, opts *cliOptions, logger *slog.Logger) int {
	s, err := newSession(cfg, opts, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.close()

	if !opts.explicitMode() {
		doubleTap, err := s.instance.CheckDoubleTap(time.Now())
		if err != nil {
			logger.Debug("double-tap check failed", "error", err)
		}
		if doubleTap {
			opts.mode = modeDoubleTap
		}
	}

	sleepDelay(opts.delayMs)

	opID := events.NewOperationID()
	started := time.Now()
	events.Emit(events.OperationStarted, map[string]any{
		"operation_id": opID,
		"mode":         opts.mode.String(),
	})

	var status string
	var code int
	switch opts.mode {
	case modeInteractive:
		status, code = s.runInteractive()
	case modeDoubleTap:
		status, code = s.runDoubleTap()
	default:
		status, code = s.runDirect()
	}

	events.Emit(events.OperationCompleted, map[string]any{
		"operation_id": opID,
		"mode":         opts.mode.String(),
		"status":       status,
		"duration_ms":  time.Since(started).Milliseconds(),
	})

	if !s.sink.Wait(sideEffectGrace) {
		logger.Debug("side effects still running at exit")
	}
	return code
}

// runDirect handles --instant, --region and --window.
func (s *session) runDirect() (string, int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CaptureTimeout())
	defer cancel()

	var img *image.RGBA
	var err error
	switch s.opts.mode {
	case modeRegion:
		img, err = s.capturer.Region(ctx, s.opts.region)
	case modeWindow:
		img, err = s.capturer.Window(ctx, s.opts.appID)
	default:
		img, err = s.capturer.Fullscreen(ctx, s.opts.monitor)
	}
	if err != nil {
		return s.failed("capture", err)
	}
	return s.save(img)
}

// runDoubleTap replaces a running overlay with an instant full-screen
// capture.
func (s *session) runDoubleTap() (string, int) {
	killed, err := s.instance.KillRunning()
	if err != nil {
		s.logger.Debug("could not stop running overlay", "error", err)
	}
	if s.instance.CleanupStaleLock() {
		s.logger.Debug("removed stale lock file", "path", s.cfg.LockFile)
	}
	s.logger.Debug("double tap", "killed_overlay", killed)

	ctx := context.Background()
	if err := s.backend.HideCursor(ctx); err != nil {
		s.logger.Debug("could not hide cursor", "error", err)
	}
	status, code := s.runDirect()
	if err := s.backend.ShowCursor(ctx); err != nil {
		s.logger.Debug("could not show cursor", "error", err)
	}
	return status, code
}

func (s *session) runInteractive() (string, int) {
	if err := s.instance.AcquireLock(); err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			return s.signalRunning()
		}
		return s.failed("lock", err)
	}
	defer func() {
		if err := s.instance.ReleaseLock(); err != nil {
			s.logger.Debug("lock release failed", "error", err)
		}
	}()

	surface, err := overlay.NewX11Surface(s.logger)
	if err != nil {
		return s.failed("overlay", err)
	}

	focuser, _ := s.backend.(platform.Focuser)
	ctrl := overlay.New(overlay.Deps{
		Capturer: s.capturer,
		Windows:  s.backend,
		Cursor:   s.backend,
		Focus:    focuser,
		Output:   s.sink,
		Surface:  surface,
		Events:   events.Default(),
		Logger:   s.logger,
	}, overlay.Options{
		Monitor:        s.opts.monitor,
		CaptureTimeout: s.cfg.CaptureTimeout(),
		Save:           s.saveOptions(),
		Magnifier:      magnifier.New(s.cfg.Magnifier.Radius, s.cfg.Magnifier.Zoom),
	})

	ipcServer, err := ipc.NewServer(overlayControl{ctrl: ctrl, backend: s.backend.Name()})
	if err == nil {
		err = ipcServer.Start()
	}
	if err != nil {
		log.Printf("Overlay: control socket unavailable, relying on SIGUSR1: %v", err)
	} else {
		defer ipcServer.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGUSR1, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGUSR1 {
					if err := ctrl.Fullscreen(); err != nil {
						s.logger.Debug("fullscreen signal dropped", "error", err)
					}
					continue
				}
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()

	outcome, err := ctrl.Run(ctx)
	if err != nil {
		return s.failed("capture", err)
	}
	switch {
	case outcome.Err != nil:
		// Already logged and emitted by the controller.
		return "failed", 1
	case outcome.Result != nil:
		return "saved", 0
	default:
		return "cancelled", 0
	}
}

// signalRunning forwards a fullscreen request to the overlay that holds the
// lock, through its control socket or SIGUSR1.
func (s *session) signalRunning() (string, int) {
	client := ipc.NewClient()
	err := client.Fullscreen()
	if err == nil {
		s.logger.Debug("sent fullscreen request over control socket")
		return "forwarded", 0
	}
	s.logger.Debug("control socket request failed, falling back to SIGUSR1", "error", err)
	if err := s.instance.SignalFullscreen(); err != nil {
		return s.failed("signal", err)
	}
	return "forwarded", 0
}

func (s *session) save(img image.Image) (string, int) {
	if _, err := s.sink.Save(img, s.saveOptions()); err != nil {
		return s.failed("save", err)
	}
	return "saved", 0
}

func (s *session) failed(stage string, err error) (string, int) {
	s.logger.Error("screenshot failed", "stage", stage, "error", err)
	events.Emit(events.ErrorHandled, map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
	return "failed", 1
}

// overlayControl serves control socket requests from a running overlay.
type overlayControl struct {
	ctrl    *overlay.Controller
	backend string
}

func (o overlayControl) Fullscreen() error { return o.ctrl.Fullscreen() }

func (o overlayControl) Cancel() error { return o.ctrl.Cancel() }

func (o overlayControl) Status() ipc.StatusData {
	st := o.ctrl.Status()
	return ipc.StatusData{
		Phase:       st.Phase,
		PointerX:    st.PointerX,
		PointerY:    st.PointerY,
		WindowCount: st.WindowCount,
		HoverAppID:  st.HoverAppID,
		Backend:     o.backend,
	}
}

var _ ipc.Handler = overlayControl{}
