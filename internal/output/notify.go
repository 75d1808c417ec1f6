package output

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod    = "org.freedesktop.Notifications.Notify"
	notifyAppName   = "Screenshot Tool"
	notifyIcon      = "camera-photo"
	notifyTimeoutMs = int32(5000)
	urgencyLow      = byte(0)
)

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(summary, body string) error
}

// DBusNotifier talks to the freedesktop notification daemon on the session bus.
type DBusNotifier struct{}

func (DBusNotifier) Notify(summary, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("session bus unavailable: %w", err)
	}

	obj := conn.Object(notifyDest, notifyPath)
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyLow),
	}
	call := obj.Call(notifyMethod, 0,
		notifyAppName, uint32(0), notifyIcon, summary, body,
		[]string{}, hints, notifyTimeoutMs)
	if call.Err != nil {
		return fmt.Errorf("notification failed: %w", call.Err)
	}
	return nil
}
