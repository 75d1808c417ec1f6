package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/1broseidon/screenshot-tool/internal/config"
	"github.com/1broseidon/screenshot-tool/internal/platform"
)

func TestParseFlagsModes(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		mode   captureMode
		region platform.Rect
		appID  string
	}{
		{"default interactive", nil, modeInteractive, platform.Rect{}, ""},
		{"instant", []string{"--instant"}, modeInstant, platform.Rect{}, ""},
		{"region", []string{"--region", "10,20,300,200"}, modeRegion, platform.Rect{X: 10, Y: 20, Width: 300, Height: 200}, ""},
		{"window", []string{"--window", "firefox"}, modeWindow, platform.Rect{}, "firefox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags(%v) error: %v", tt.args, err)
			}
			if opts.mode != tt.mode || opts.region != tt.region || opts.appID != tt.appID {
				t.Fatalf("parseFlags(%v) = %+v", tt.args, opts)
			}
			if opts.explicitMode() != (tt.mode != modeInteractive) {
				t.Fatalf("explicitMode() = %v", opts.explicitMode())
			}
		})
	}
}

func TestParseFlagsOutputOptions(t *testing.T) {
	opts, err := parseFlags([]string{
		"-o", "/tmp/a.jpg", "-f", "jpg", "-q", "75",
		"--no-clipboard", "--no-sound", "--json", "--delay", "250", "--monitor", "DP-1",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}
	if opts.output != "/tmp/a.jpg" || opts.format != "jpg" || opts.quality != 75 {
		t.Fatalf("output flags = %+v", opts)
	}
	if !opts.noClipboard || !opts.noSound || opts.noNotification || !opts.json {
		t.Fatalf("toggles = %+v", opts)
	}
	if opts.delayMs != 250 || opts.monitor != "DP-1" {
		t.Fatalf("delay/monitor = %d/%q", opts.delayMs, opts.monitor)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"two modes", []string{"--instant", "--window", "x"}},
		{"bad region", []string{"--region", "1,2,3"}},
		{"empty region", []string{"--region", "0,0,0,10"}},
		{"bad format", []string{"--format", "gif"}},
		{"quality range", []string{"--quality", "101"}},
		{"negative delay", []string{"--delay", "-5"}},
		{"stray argument", []string{"capture"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args, io.Discard); err == nil {
				t.Fatalf("parseFlags(%v) expected error", tt.args)
			}
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseFlags([]string{"--help"}, &buf)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parseFlags(--help) error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(buf.String(), "mcp serve") {
		t.Fatalf("usage missing commands:\n%s", buf.String())
	}
}

func TestParseRegion(t *testing.T) {
	rect, err := parseRegion(" 5, 6 ,7,8")
	if err != nil {
		t.Fatalf("parseRegion() error: %v", err)
	}
	if rect != (platform.Rect{X: 5, Y: 6, Width: 7, Height: 8}) {
		t.Fatalf("parseRegion() = %+v", rect)
	}
	if _, err := parseRegion("a,b,c,d"); err == nil {
		t.Fatal("parseRegion() expected error for non-numeric input")
	}
}

func TestCaptureModeString(t *testing.T) {
	want := map[captureMode]string{
		modeInteractive: "interactive",
		modeInstant:     "instant",
		modeRegion:      "region",
		modeWindow:      "window",
		modeDoubleTap:   "double_tap",
	}
	for mode, s := range want {
		if mode.String() != s {
			t.Errorf("%d.String() = %q, want %q", mode, mode.String(), s)
		}
	}
}

func TestSaveOptionsMergeConfigAndFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultFormat = "jpg"
	cfg.DefaultQuality = 60
	cfg.EnableSound = false

	s := &session{cfg: cfg, opts: &cliOptions{noClipboard: true, stdout: true}}
	got := s.saveOptions()
	if got.Format != "jpg" || got.Quality != 60 {
		t.Fatalf("format/quality = %q/%d, want config defaults", got.Format, got.Quality)
	}
	if got.Clipboard || got.Sound || !got.Notification || !got.Stdout {
		t.Fatalf("toggles = %+v", got)
	}

	s.opts = &cliOptions{format: "png", quality: 95, silent: true, output: "/tmp/x.png"}
	got = s.saveOptions()
	if got.Format != "png" || got.Quality != 95 || !got.Silent || got.Path != "/tmp/x.png" {
		t.Fatalf("flag overrides = %+v", got)
	}
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]int{"b": 2, "a": 1}); err != nil {
		t.Fatalf("writeJSON() error: %v", err)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}\n"
	if buf.String() != want {
		t.Fatalf("writeJSON() = %q, want %q", buf.String(), want)
	}
}

func TestRunVersionAndUsageExitCodes(t *testing.T) {
	if code := run([]string{"--version"}); code != 0 {
		t.Fatalf("run(--version) = %d, want 0", code)
	}
	if code := run([]string{"--instant", "--window", "x"}); code != 2 {
		t.Fatalf("run(conflicting modes) = %d, want 2", code)
	}
	if code := run([]string{"events", "bogus"}); code != 2 {
		t.Fatalf("run(events bogus) = %d, want 2", code)
	}
	if code := run([]string{"config"}); code != 2 {
		t.Fatalf("run(config) = %d, want 2", code)
	}
}
