package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at a YAML path and where it came from.
//
// Supported paths are the top-level keys plus:
//
//	magnifier.radius
//	magnifier.zoom
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "wayland_capture":
		return cfg.WaylandCapture, nil
	case "output_dir":
		return cfg.OutputDir, nil
	case "default_format":
		return cfg.DefaultFormat, nil
	case "default_quality":
		return cfg.DefaultQuality, nil
	case "double_tap_ms":
		return cfg.DoubleTapMs, nil
	case "enable_sound":
		return cfg.EnableSound, nil
	case "enable_notification":
		return cfg.EnableNotification, nil
	case "enable_clipboard":
		return cfg.EnableClipboard, nil
	case "lock_file":
		return cfg.LockFile, nil
	case "double_tap_file":
		return cfg.DoubleTapFile, nil
	case "silent_output_dir":
		return cfg.SilentOutputDir, nil
	case "hooks_dir":
		return cfg.HooksDir, nil
	case "capture_timeout_ms":
		return cfg.CaptureTimeoutMs, nil
	case "backend":
		return cfg.Backend, nil
	case "magnifier":
		return cfg.Magnifier, nil
	case "magnifier.radius":
		return cfg.Magnifier.Radius, nil
	case "magnifier.zoom":
		return cfg.Magnifier.Zoom, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
