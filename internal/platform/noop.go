package platform

import "context"

// NoopBackend is used when no compositor integration is available.
// It reports no windows and no cursor position.
type NoopBackend struct{}

var _ Backend = NoopBackend{}

func (NoopBackend) Name() string { return "none" }

func (NoopBackend) ListViews(context.Context) ([]View, error) { return nil, nil }

func (NoopBackend) CursorPosition(context.Context) (int, int, bool) { return 0, 0, false }

func (NoopBackend) HideCursor(context.Context) error { return nil }

func (NoopBackend) ShowCursor(context.Context) error { return nil }

func (NoopBackend) Close() error { return nil }
