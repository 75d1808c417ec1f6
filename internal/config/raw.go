package config

// RawMagnifier mirrors MagnifierConfig with optional fields.
type RawMagnifier struct {
	Radius *int `yaml:"radius"`
	Zoom   *int `yaml:"zoom"`
}

// RawConfig is one YAML document before defaults are applied. Nil means
// "not set here".
type RawConfig struct {
	WaylandCapture     *string       `yaml:"wayland_capture"`
	OutputDir          *string       `yaml:"output_dir"`
	DefaultFormat      *string       `yaml:"default_format"`
	DefaultQuality     *int          `yaml:"default_quality"`
	DoubleTapMs        *int          `yaml:"double_tap_ms"`
	EnableSound        *bool         `yaml:"enable_sound"`
	EnableNotification *bool         `yaml:"enable_notification"`
	EnableClipboard    *bool         `yaml:"enable_clipboard"`
	LockFile           *string       `yaml:"lock_file"`
	DoubleTapFile      *string       `yaml:"double_tap_file"`
	SilentOutputDir    *string       `yaml:"silent_output_dir"`
	HooksDir           *string       `yaml:"hooks_dir"`
	CaptureTimeoutMs   *int          `yaml:"capture_timeout_ms"`
	Backend            *string       `yaml:"backend"`
	Magnifier          *RawMagnifier `yaml:"magnifier"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.WaylandCapture != nil {
		out.WaylandCapture = overlay.WaylandCapture
	}
	if overlay.OutputDir != nil {
		out.OutputDir = overlay.OutputDir
	}
	if overlay.DefaultFormat != nil {
		out.DefaultFormat = overlay.DefaultFormat
	}
	if overlay.DefaultQuality != nil {
		out.DefaultQuality = overlay.DefaultQuality
	}
	if overlay.DoubleTapMs != nil {
		out.DoubleTapMs = overlay.DoubleTapMs
	}
	if overlay.EnableSound != nil {
		out.EnableSound = overlay.EnableSound
	}
	if overlay.EnableNotification != nil {
		out.EnableNotification = overlay.EnableNotification
	}
	if overlay.EnableClipboard != nil {
		out.EnableClipboard = overlay.EnableClipboard
	}
	if overlay.LockFile != nil {
		out.LockFile = overlay.LockFile
	}
	if overlay.DoubleTapFile != nil {
		out.DoubleTapFile = overlay.DoubleTapFile
	}
	if overlay.SilentOutputDir != nil {
		out.SilentOutputDir = overlay.SilentOutputDir
	}
	if overlay.HooksDir != nil {
		out.HooksDir = overlay.HooksDir
	}
	if overlay.CaptureTimeoutMs != nil {
		out.CaptureTimeoutMs = overlay.CaptureTimeoutMs
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Magnifier != nil {
		out.Magnifier = mergeRawMagnifier(out.Magnifier, *overlay.Magnifier)
	}

	return out
}

func mergeRawMagnifier(base *RawMagnifier, overlay RawMagnifier) *RawMagnifier {
	out := RawMagnifier{}
	if base != nil {
		out = *base
	}
	if overlay.Radius != nil {
		out.Radius = overlay.Radius
	}
	if overlay.Zoom != nil {
		out.Zoom = overlay.Zoom
	}
	return &out
}
