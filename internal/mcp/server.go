// Package mcp exposes the capture pipeline as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/screenshot-tool/internal/capture"
	"github.com/1broseidon/screenshot-tool/internal/output"
	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
)

const (
	ServerName    = "screenshot-tool"
	ServerVersion = "0.1.0"
)

// Deps are the collaborators behind the tools. Windows may be nil.
type Deps struct {
	Capturer capture.Capturer
	Windows  platform.WindowSource
	Output   output.Saver
	Logger   *slog.Logger
}

// Options carry config defaults applied to every capture.
type Options struct {
	Format         string
	Quality        int
	CaptureTimeout time.Duration
}

// Server is the MCP server for headless captures.
type Server struct {
	mcpServer *mcpsdk.Server
	deps      Deps
	opts      Options
}

// NewServer creates a server and registers its tools.
func NewServer(deps Deps, opts Options) (*Server, error) {
	if deps.Capturer == nil {
		return nil, fmt.Errorf("mcp server requires a capturer")
	}
	if deps.Output == nil {
		return nil, fmt.Errorf("mcp server requires an output sink")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = capture.DefaultTimeout
	}

	s := &Server{deps: deps, opts: opts}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run serves on stdio, blocking until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_screen",
		Description: "Capture a full output and save it without clipboard, notification or sound. Returns the saved file path and dimensions.",
	}, s.handleCaptureScreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_region",
		Description: "Capture a rectangle given in global logical coordinates and save it silently.",
	}, s.handleCaptureRegion)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_window",
		Description: "Capture a single window by application id and save it silently. Use list_windows to discover app ids.",
	}, s.handleCaptureWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List capturable windows with geometry, frontmost first (z_order 0).",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List physical outputs with their position and size.",
	}, s.handleListOutputs)
}

func (s *Server) handleCaptureScreen(ctx context.Context, _ *mcpsdk.CallToolRequest, args CaptureScreenInput) (*mcpsdk.CallToolResult, CaptureOutput, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.CaptureTimeout)
	defer cancel()

	img, err := s.deps.Capturer.Fullscreen(cctx, strings.TrimSpace(args.Monitor))
	if err != nil {
		return nil, CaptureOutput{}, fmt.Errorf("capture_screen: %w", err)
	}
	return s.save("capture_screen", img, args.Path, args.Format, args.Quality)
}

func (s *Server) handleCaptureRegion(ctx context.Context, _ *mcpsdk.CallToolRequest, args CaptureRegionInput) (*mcpsdk.CallToolResult, CaptureOutput, error) {
	rect := platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height}
	if rect.Empty() {
		return nil, CaptureOutput{}, fmt.Errorf("capture_region: width and height must be positive, got %dx%d", args.Width, args.Height)
	}

	cctx, cancel := context.WithTimeout(ctx, s.opts.CaptureTimeout)
	defer cancel()

	img, err := s.deps.Capturer.Region(cctx, rect)
	if err != nil {
		return nil, CaptureOutput{}, fmt.Errorf("capture_region: %w", err)
	}
	return s.save("capture_region", img, args.Path, args.Format, args.Quality)
}

func (s *Server) handleCaptureWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args CaptureWindowInput) (*mcpsdk.CallToolResult, CaptureOutput, error) {
	appID := strings.TrimSpace(args.AppID)
	if appID == "" {
		return nil, CaptureOutput{}, fmt.Errorf("capture_window: app_id is required")
	}

	cctx, cancel := context.WithTimeout(ctx, s.opts.CaptureTimeout)
	defer cancel()

	img, err := s.deps.Capturer.Window(cctx, appID)
	if err != nil {
		return nil, CaptureOutput{}, fmt.Errorf("capture_window: %w", err)
	}
	return s.save("capture_window", img, args.Path, args.Format, args.Quality)
}

func (s *Server) handleListWindows(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows := registry.Query(ctx, s.deps.Windows, s.deps.Logger)
	if windows == nil {
		windows = []registry.WindowInfo{}
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleListOutputs(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	outputs, err := s.deps.Capturer.Outputs(ctx)
	if err != nil {
		return nil, ListOutputsOutput{}, fmt.Errorf("list_outputs: %w", err)
	}
	if outputs == nil {
		outputs = []platform.Output{}
	}
	return nil, ListOutputsOutput{Outputs: outputs}, nil
}

// save writes img in silent mode so nothing touches the desktop or stdout,
// which carries the protocol.
func (s *Server) save(tool string, img image.Image, path, format string, quality int) (*mcpsdk.CallToolResult, CaptureOutput, error) {
	if format == "" {
		format = s.opts.Format
	}
	if quality == 0 {
		quality = s.opts.Quality
	}
	result, err := s.deps.Output.Save(img, output.Options{
		Path:    path,
		Format:  format,
		Quality: quality,
		Silent:  true,
	})
	if err != nil {
		return nil, CaptureOutput{}, fmt.Errorf("%s: %w", tool, err)
	}
	s.deps.Logger.Debug("mcp capture saved", "tool", tool, "path", result.Path)
	return nil, CaptureOutput{
		Path:      result.Path,
		Width:     result.Width,
		Height:    result.Height,
		Timestamp: result.Timestamp,
	}, nil
}
