// Package wayfire talks to the Wayfire compositor's IPC socket.
//
// Messages are JSON objects prefixed by their length as a 4-byte
// little-endian integer, in both directions.
package wayfire

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// SocketEnv names the environment variable Wayfire exports with its IPC socket path.
const SocketEnv = "WAYFIRE_SOCKET"

// maxMessageSize bounds a single response; list-views on a busy session
// stays well under this.
const maxMessageSize = 16 << 20

// ErrUnavailable is returned when no Wayfire socket is configured.
var ErrUnavailable = errors.New("wayfire IPC unavailable")

// Geometry is a view's layout box in output-local logical coordinates.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// View is one entry of window-rules/list-views.
type View struct {
	ID                 uint32   `json:"id"`
	AppID              string   `json:"app-id"`
	Title              string   `json:"title"`
	Geometry           Geometry `json:"geometry"`
	Mapped             bool     `json:"mapped"`
	Minimized          bool     `json:"minimized"`
	Type               string   `json:"type"`
	Layer              string   `json:"layer"`
	LastFocusTimestamp int64    `json:"last-focus-timestamp"`
}

type request struct {
	Method string      `json:"method"`
	Data   interface{} `json:"data"`
}

// Client issues one request per connection, like the Python bindings do.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket named by WAYFIRE_SOCKET.
func NewClient() (*Client, error) {
	path := os.Getenv(SocketEnv)
	if path == "" {
		return nil, ErrUnavailable
	}
	return NewClientWithPath(path), nil
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    time.Second,
	}
}

// SetTimeout overrides the per-request deadline (default 1s).
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// call sends a request and decodes the response into out (if non-nil).
func (c *Client) call(ctx context.Context, method string, data interface{}, out interface{}) error {
	if data == nil {
		data = struct{}{}
	}
	payload, err := json.Marshal(request{Method: method, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to wayfire: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	if err := writeMessage(conn, payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	resp, err := readMessage(conn)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var status struct {
		Error string `json:"error"`
	}
	// list-views answers with a bare array; only objects carry an error field.
	if len(resp) > 0 && resp[0] == '{' {
		if err := json.Unmarshal(resp, &status); err == nil && status.Error != "" {
			return fmt.Errorf("wayfire %s: %s", method, status.Error)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	return nil
}

func writeMessage(w io.Writer, payload []byte) error {
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(append(header, payload...)); err != nil {
		return err
	}
	return nil
}

func readMessage(r io.Reader) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header)
	if size > maxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListViews returns every view the compositor knows about, unfiltered.
func (c *Client) ListViews(ctx context.Context) ([]View, error) {
	var views []View
	if err := c.call(ctx, "window-rules/list-views", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// CursorPosition returns the pointer position in global logical coordinates.
func (c *Client) CursorPosition(ctx context.Context) (float64, float64, error) {
	var resp struct {
		Pos *struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"pos"`
	}
	if err := c.call(ctx, "window-rules/get_cursor_position", nil, &resp); err != nil {
		return 0, 0, err
	}
	if resp.Pos == nil {
		return 0, 0, fmt.Errorf("cursor position missing from response")
	}
	return resp.Pos.X, resp.Pos.Y, nil
}

// CursorHidden reports the cursor-control plugin's state.
func (c *Client) CursorHidden(ctx context.Context) (bool, error) {
	var resp struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.call(ctx, "cursor-control/is-hidden", nil, &resp); err != nil {
		return false, err
	}
	return resp.Hidden, nil
}

// HideCursor hides the cursor unless it already is.
func (c *Client) HideCursor(ctx context.Context) error {
	hidden, err := c.CursorHidden(ctx)
	if err != nil {
		return err
	}
	if hidden {
		return nil
	}
	return c.call(ctx, "cursor-control/hide", nil, nil)
}

// ShowCursor makes the cursor visible again.
func (c *Client) ShowCursor(ctx context.Context) error {
	return c.call(ctx, "cursor-control/show", nil, nil)
}

// FocusView asks the compositor to focus (and raise) a view.
func (c *Client) FocusView(ctx context.Context, id uint32) error {
	return c.call(ctx, "wm-actions/set-focus", map[string]uint32{"id": id}, nil)
}
