package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCREENSHOT_"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from %s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.WaylandCapture != nil {
		cfg.WaylandCapture = *raw.WaylandCapture
	}
	if raw.OutputDir != nil {
		cfg.OutputDir = expandHome(*raw.OutputDir)
	}
	if raw.DefaultFormat != nil {
		cfg.DefaultFormat = strings.ToLower(strings.TrimSpace(*raw.DefaultFormat))
	}
	cfg.DefaultQuality = derefInt(raw.DefaultQuality, cfg.DefaultQuality)
	cfg.DoubleTapMs = derefInt(raw.DoubleTapMs, cfg.DoubleTapMs)
	cfg.EnableSound = derefBool(raw.EnableSound, cfg.EnableSound)
	cfg.EnableNotification = derefBool(raw.EnableNotification, cfg.EnableNotification)
	cfg.EnableClipboard = derefBool(raw.EnableClipboard, cfg.EnableClipboard)
	if raw.LockFile != nil {
		cfg.LockFile = expandHome(*raw.LockFile)
	}
	if raw.DoubleTapFile != nil {
		cfg.DoubleTapFile = expandHome(*raw.DoubleTapFile)
	}
	if raw.SilentOutputDir != nil {
		cfg.SilentOutputDir = expandHome(*raw.SilentOutputDir)
	}
	if raw.HooksDir != nil {
		cfg.HooksDir = expandHome(*raw.HooksDir)
	}
	cfg.CaptureTimeoutMs = derefInt(raw.CaptureTimeoutMs, cfg.CaptureTimeoutMs)
	if raw.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*raw.Backend))
	}
	if raw.Magnifier != nil {
		cfg.Magnifier.Radius = derefInt(raw.Magnifier.Radius, cfg.Magnifier.Radius)
		cfg.Magnifier.Zoom = derefInt(raw.Magnifier.Zoom, cfg.Magnifier.Zoom)
	}

	return cfg
}

// applyEnv overrides cfg from SCREENSHOT_* variables and records each
// override in sources.
func applyEnv(cfg *Config, getenv func(string) string, sources map[string]Source) error {
	lookup := func(name string) (string, bool) {
		v := getenv(EnvPrefix + name)
		return v, v != ""
	}
	record := func(path, name string) {
		sources[path] = Source{Kind: SourceEnv, Name: EnvPrefix + name}
	}

	if v, ok := lookup("WAYLAND_CAPTURE"); ok {
		cfg.WaylandCapture = v
		record("wayland_capture", "WAYLAND_CAPTURE")
	}
	if v, ok := lookup("OUTPUT_DIR"); ok {
		cfg.OutputDir = expandHome(v)
		record("output_dir", "OUTPUT_DIR")
	}
	if v, ok := lookup("DEFAULT_FORMAT"); ok {
		cfg.DefaultFormat = strings.ToLower(strings.TrimSpace(v))
		record("default_format", "DEFAULT_FORMAT")
	}
	if v, ok := lookup("DOUBLE_TAP_MS"); ok {
		ms, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ValidationError{
				Path:   "double_tap_ms",
				Source: Source{Kind: SourceEnv, Name: EnvPrefix + "DOUBLE_TAP_MS"},
				Err:    fmt.Errorf("not an integer: %q", v),
			}
		}
		cfg.DoubleTapMs = ms
		record("double_tap_ms", "DOUBLE_TAP_MS")
	}
	if v, ok := lookup("LOCK_FILE"); ok {
		cfg.LockFile = expandHome(v)
		record("lock_file", "LOCK_FILE")
	}

	for _, b := range []struct {
		name string
		path string
		dst  *bool
	}{
		{"ENABLE_SOUND", "enable_sound", &cfg.EnableSound},
		{"ENABLE_NOTIFICATION", "enable_notification", &cfg.EnableNotification},
		{"ENABLE_CLIPBOARD", "enable_clipboard", &cfg.EnableClipboard},
	} {
		if v, ok := lookup(b.name); ok {
			*b.dst = parseEnvBool(v)
			record(b.path, b.name)
		}
	}
	return nil
}

func parseEnvBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
