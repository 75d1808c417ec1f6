package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/screenshot-tool/internal/wayfire"
)

// Backend kinds accepted by Select.
const (
	KindAuto    = "auto"
	KindX11     = "x11"
	KindWayfire = "wayfire"
	KindNone    = "none"
)

// Focuser is implemented by backends that can raise a window by app id.
type Focuser interface {
	FocusApp(ctx context.Context, appID string) error
}

// Select picks a compositor backend. "auto" prefers Wayfire when
// WAYFIRE_SOCKET is set, then X11, then the no-op backend. A forced kind
// that cannot be opened is an error.
func Select(kind string, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch kind {
	case "", KindAuto:
		if os.Getenv(wayfire.SocketEnv) != "" {
			client, err := wayfire.NewClient()
			if err == nil {
				logger.Debug("using wayfire backend")
				return NewWayfireBackend(client, logger), nil
			}
		}
		b, err := openX11(logger)
		if err == nil {
			logger.Debug("using x11 backend")
			return b, nil
		}
		logger.Debug("x11 backend unavailable", "error", err)
		logger.Debug("no compositor integration, window selection disabled")
		return NoopBackend{}, nil
	case KindWayfire:
		client, err := wayfire.NewClient()
		if err != nil {
			return nil, err
		}
		return NewWayfireBackend(client, logger), nil
	case KindX11:
		return openX11(logger)
	case KindNone:
		return NoopBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

var errNoX11 = errors.New("x11 backend not supported on this platform")
