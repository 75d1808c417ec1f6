package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend field.
const (
	BackendAuto    = "auto"
	BackendX11     = "x11"
	BackendWayfire = "wayfire"
	BackendNone    = "none"
)

const (
	DefaultFormat           = "png"
	DefaultQuality          = 90
	DefaultDoubleTapMs      = 500
	DefaultCaptureTimeoutMs = 10000
	DefaultLockFile         = "/tmp/screenshot-tool.lock"
	DefaultDoubleTapFile    = "/tmp/screenshot-tool.doubletap"
	DefaultSilentOutputDir  = "/tmp"
	DefaultMagnifierRadius  = 225
	DefaultMagnifierZoom    = 50

	captureBinaryName = "wayland-capture"
)

var validFormats = []string{"png", "jpg", "jpeg", "webp"}

// MagnifierConfig sizes the loupe shown next to the pointer.
type MagnifierConfig struct {
	Radius int `yaml:"radius" json:"radius"`
	Zoom   int `yaml:"zoom" json:"zoom"`
}

// Config is the effective configuration.
type Config struct {
	// WaylandCapture is the capture binary. Empty means search the usual
	// install locations, then fall back to the built-in X11 capturer.
	WaylandCapture     string          `yaml:"wayland_capture" json:"wayland_capture"`
	OutputDir          string          `yaml:"output_dir" json:"output_dir"`
	DefaultFormat      string          `yaml:"default_format" json:"default_format"`
	DefaultQuality     int             `yaml:"default_quality" json:"default_quality"`
	DoubleTapMs        int             `yaml:"double_tap_ms" json:"double_tap_ms"`
	EnableSound        bool            `yaml:"enable_sound" json:"enable_sound"`
	EnableNotification bool            `yaml:"enable_notification" json:"enable_notification"`
	EnableClipboard    bool            `yaml:"enable_clipboard" json:"enable_clipboard"`
	LockFile           string          `yaml:"lock_file" json:"lock_file"`
	DoubleTapFile      string          `yaml:"double_tap_file" json:"double_tap_file"`
	SilentOutputDir    string          `yaml:"silent_output_dir" json:"silent_output_dir"`
	HooksDir           string          `yaml:"hooks_dir" json:"hooks_dir"`
	CaptureTimeoutMs   int             `yaml:"capture_timeout_ms" json:"capture_timeout_ms"`
	Backend            string          `yaml:"backend" json:"backend"`
	Magnifier          MagnifierConfig `yaml:"magnifier" json:"magnifier"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	configDir := defaultConfigDir(home)

	return &Config{
		OutputDir:          filepath.Join(home, "Pictures", "screenshots"),
		DefaultFormat:      DefaultFormat,
		DefaultQuality:     DefaultQuality,
		DoubleTapMs:        DefaultDoubleTapMs,
		EnableSound:        true,
		EnableNotification: true,
		EnableClipboard:    true,
		LockFile:           DefaultLockFile,
		DoubleTapFile:      DefaultDoubleTapFile,
		SilentOutputDir:    DefaultSilentOutputDir,
		HooksDir:           filepath.Join(configDir, "hooks"),
		CaptureTimeoutMs:   DefaultCaptureTimeoutMs,
		Backend:            BackendAuto,
		Magnifier: MagnifierConfig{
			Radius: DefaultMagnifierRadius,
			Zoom:   DefaultMagnifierZoom,
		},
	}
}

func defaultConfigDir(home string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "screenshot-tool")
	}
	return filepath.Join(home, ".config", "screenshot-tool")
}

// DoubleTapWindow returns double_tap_ms as a duration.
func (c *Config) DoubleTapWindow() time.Duration {
	return time.Duration(c.DoubleTapMs) * time.Millisecond
}

// CaptureTimeout returns capture_timeout_ms as a duration.
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutMs) * time.Millisecond
}

// CaptureBinary resolves the capture binary to an executable path, or ""
// when none is installed.
func (c *Config) CaptureBinary() string {
	return resolveCaptureBinary(c.WaylandCapture, exec.LookPath)
}

func resolveCaptureBinary(configured string, lookPath func(string) (string, error)) string {
	configured = expandHome(strings.TrimSpace(configured))
	if configured != "" {
		if strings.ContainsRune(configured, filepath.Separator) {
			if isExecutable(configured) {
				return configured
			}
			return ""
		}
		if path, err := lookPath(configured); err == nil {
			return path
		}
		return ""
	}

	for _, candidate := range captureBinaryCandidates() {
		if isExecutable(candidate) {
			return candidate
		}
	}
	if path, err := lookPath(captureBinaryName); err == nil {
		return path
	}
	return ""
}

func captureBinaryCandidates() []string {
	var out []string
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, "Systems", "desktop", "wayland-window-capture", captureBinaryName))
	}
	return append(out,
		filepath.Join("/usr/local/bin", captureBinaryName),
		filepath.Join("/usr/bin", captureBinaryName),
	)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if !containsString(validFormats, strings.ToLower(c.DefaultFormat)) {
		return &ValidationError{Path: "default_format", Err: fmt.Errorf("must be one of %s", strings.Join(validFormats, ", "))}
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return &ValidationError{Path: "default_quality", Err: fmt.Errorf("must be between 1 and 100")}
	}
	if c.DoubleTapMs <= 0 {
		return &ValidationError{Path: "double_tap_ms", Err: fmt.Errorf("must be positive")}
	}
	if c.CaptureTimeoutMs <= 0 {
		return &ValidationError{Path: "capture_timeout_ms", Err: fmt.Errorf("must be positive")}
	}
	switch c.Backend {
	case BackendAuto, BackendX11, BackendWayfire, BackendNone:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("must be one of auto, x11, wayfire, none")}
	}
	if c.Magnifier.Radius < 20 {
		return &ValidationError{Path: "magnifier.radius", Err: fmt.Errorf("must be at least 20")}
	}
	if c.Magnifier.Zoom < 1 {
		return &ValidationError{Path: "magnifier.zoom", Err: fmt.Errorf("must be at least 1")}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &ValidationError{Path: "output_dir", Err: fmt.Errorf("must not be empty")}
	}
	if strings.TrimSpace(c.LockFile) == "" {
		return &ValidationError{Path: "lock_file", Err: fmt.Errorf("must not be empty")}
	}
	return nil
}

// Save writes the config to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config as YAML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
