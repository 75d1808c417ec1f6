package overlay

import (
	"image"

	"github.com/1broseidon/screenshot-tool/internal/selection"
)

// Surface is the full-screen window the overlay draws into.
type Surface interface {
	// Open shows a width x height surface and returns its input events.
	// The channel is closed when the surface goes away.
	Open(width, height int) (<-chan selection.Event, error)
	// Present displays frame. frame is reused for the next draw.
	Present(frame *image.RGBA) error
	// Close hides the surface and releases its resources. Safe to call twice.
	Close() error
}
