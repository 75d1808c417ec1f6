//go:build !linux

package platform

import "log/slog"

func openX11(*slog.Logger) (Backend, error) {
	return nil, errNoX11
}
