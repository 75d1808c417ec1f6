package mcp

import (
	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
)

// CaptureScreenInput is the input for the capture_screen tool.
type CaptureScreenInput struct {
	Monitor string `json:"monitor,omitempty" jsonschema:"Output name to capture (default: primary output)"`
	Format  string `json:"format,omitempty" jsonschema:"Image format: png, jpg or webp (default: config default_format)"`
	Quality int    `json:"quality,omitempty" jsonschema:"JPEG quality 1-100 (default: config default_quality)"`
	Path    string `json:"path,omitempty" jsonschema:"Destination file (default: a timestamped file in the silent output directory)"`
}

// CaptureRegionInput is the input for the capture_region tool.
type CaptureRegionInput struct {
	X       int    `json:"x" jsonschema:"Left edge in global logical coordinates"`
	Y       int    `json:"y" jsonschema:"Top edge in global logical coordinates"`
	Width   int    `json:"width" jsonschema:"Region width in pixels"`
	Height  int    `json:"height" jsonschema:"Region height in pixels"`
	Format  string `json:"format,omitempty" jsonschema:"Image format: png, jpg or webp"`
	Quality int    `json:"quality,omitempty" jsonschema:"JPEG quality 1-100"`
	Path    string `json:"path,omitempty" jsonschema:"Destination file"`
}

// CaptureWindowInput is the input for the capture_window tool.
type CaptureWindowInput struct {
	AppID   string `json:"app_id" jsonschema:"Application id of the window to capture (see list_windows)"`
	Format  string `json:"format,omitempty" jsonschema:"Image format: png, jpg or webp"`
	Quality int    `json:"quality,omitempty" jsonschema:"JPEG quality 1-100"`
	Path    string `json:"path,omitempty" jsonschema:"Destination file"`
}

// CaptureOutput describes a saved screenshot.
type CaptureOutput struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Timestamp string `json:"timestamp"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput lists capturable windows, frontmost first.
type ListWindowsOutput struct {
	Windows []registry.WindowInfo `json:"windows"`
}

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct{}

// ListOutputsOutput lists physical outputs.
type ListOutputsOutput struct {
	Outputs []platform.Output `json:"outputs"`
}
