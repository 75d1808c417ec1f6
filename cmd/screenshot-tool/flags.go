package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/1broseidon/screenshot-tool/internal/platform"
)

type captureMode int

const (
	modeInteractive captureMode = iota
	modeInstant
	modeRegion
	modeWindow
	modeDoubleTap
)

func (m captureMode) String() string {
	switch m {
	case modeInstant:
		return "instant"
	case modeRegion:
		return "region"
	case modeWindow:
		return "window"
	case modeDoubleTap:
		return "double_tap"
	default:
		return "interactive"
	}
}

type cliOptions struct {
	mode   captureMode
	region platform.Rect
	appID  string

	output         string
	format         string
	quality        int
	noClipboard    bool
	noNotification bool
	noSound        bool
	silent         bool
	stdout         bool
	json           bool

	delayMs    int
	monitor    string
	configPath string
	debug      bool
	version    bool
}

// explicitMode reports whether a mode flag was given. Double tap only
// applies to a bare invocation.
func (o *cliOptions) explicitMode() bool {
	return o.mode != modeInteractive
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: screenshot-tool [options]")
	fmt.Fprintln(w, "       screenshot-tool <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without a mode flag an interactive overlay opens: click a window to")
	fmt.Fprintln(w, "capture it, drag to select an area, PrintScreen for the full screen.")
	fmt.Fprintln(w, "Invoking the tool twice quickly captures the full screen instantly.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  config defaults     Print built-in defaults (JSON)")
	fmt.Fprintln(w, "  config schema       Print the config JSON schema")
	fmt.Fprintln(w, "  config validate     Validate the config file")
	fmt.Fprintln(w, "  config print        Print the resolved config (JSON)")
	fmt.Fprintln(w, "  config explain      Show a config value and where it came from")
	fmt.Fprintln(w, "  hooks contract      Describe the hook interface (JSON)")
	fmt.Fprintln(w, "  events catalog      List emitted events (JSON)")
	fmt.Fprintln(w, "  events lifecycle    Show event order during a run (JSON)")
	fmt.Fprintln(w, "  outputs             List outputs (JSON)")
	fmt.Fprintln(w, "  windows             List capturable windows (JSON)")
	fmt.Fprintln(w, "  mcp serve           Start the MCP server (stdio transport)")
	if fs != nil {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Options:")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}

	fs := flag.NewFlagSet("screenshot-tool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	instant := fs.Bool("instant", false, "Capture the full screen without the overlay")
	region := fs.String("region", "", "Capture a region X,Y,W,H without the overlay")
	window := fs.String("window", "", "Capture the window with this app id without the overlay")

	fs.StringVar(&opts.output, "output", "", "Output file path")
	fs.StringVar(&opts.output, "o", "", "Shorthand for --output")
	fs.StringVar(&opts.format, "format", "", "Image format: png, jpg, jpeg or webp")
	fs.StringVar(&opts.format, "f", "", "Shorthand for --format")
	fs.IntVar(&opts.quality, "quality", 0, "JPEG quality 1-100")
	fs.IntVar(&opts.quality, "q", 0, "Shorthand for --quality")
	fs.BoolVar(&opts.noClipboard, "no-clipboard", false, "Do not copy to the clipboard")
	fs.BoolVar(&opts.noNotification, "no-notification", false, "Do not show a notification")
	fs.BoolVar(&opts.noSound, "no-sound", false, "Do not play the shutter sound")
	fs.BoolVar(&opts.silent, "silent", false, "No clipboard, notification, sound or events; save to silent_output_dir")
	fs.BoolVar(&opts.stdout, "stdout", false, "Print the saved path on stdout")
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON on stdout")
	fs.IntVar(&opts.delayMs, "delay", 0, "Wait this many milliseconds before capturing")
	fs.StringVar(&opts.monitor, "monitor", "", "Output to capture (default: primary)")
	fs.StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/screenshot-tool/config.yaml)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	modes := 0
	if *instant {
		modes++
		opts.mode = modeInstant
	}
	if *region != "" {
		modes++
		rect, err := parseRegion(*region)
		if err != nil {
			return nil, err
		}
		opts.mode = modeRegion
		opts.region = rect
	}
	if *window != "" {
		modes++
		opts.mode = modeWindow
		opts.appID = strings.TrimSpace(*window)
	}
	if modes > 1 {
		return nil, errors.New("--instant, --region and --window are mutually exclusive")
	}

	if opts.format != "" {
		if !validFormat(opts.format) {
			return nil, fmt.Errorf("unsupported format %q (want png, jpg, jpeg or webp)", opts.format)
		}
	}
	if opts.quality < 0 || opts.quality > 100 {
		return nil, fmt.Errorf("--quality must be between 1 and 100, got %d", opts.quality)
	}
	if opts.delayMs < 0 {
		return nil, fmt.Errorf("--delay must not be negative, got %d", opts.delayMs)
	}
	return opts, nil
}

func validFormat(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "png", "jpg", "jpeg", "webp":
		return true
	}
	return false
}

// parseRegion parses "X,Y,W,H".
func parseRegion(s string) (platform.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return platform.Rect{}, fmt.Errorf("invalid region %q: want X,Y,W,H", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return platform.Rect{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}
	rect := platform.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if rect.Empty() {
		return platform.Rect{}, fmt.Errorf("invalid region %q: width and height must be positive", s)
	}
	return rect, nil
}
