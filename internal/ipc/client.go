package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/runtimepath"
)

// Client talks to a running overlay's control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient targets the default control socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// call reports the dial failure.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    2 * time.Second,
	}
}

// SetTimeout overrides the dial and request deadline.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// call performs one request/response round trip on a fresh connection.
func (c *Client) call(cmd CommandType) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to overlay: %w (is an overlay running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeLine(conn, Request{Command: cmd}); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", cmd, err)
	}

	var resp Response
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", cmd, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Fullscreen asks the running overlay to capture the whole screen.
func (c *Client) Fullscreen() error {
	_, err := c.call(CommandFullscreen)
	return err
}

// Cancel asks the running overlay to close without saving.
func (c *Client) Cancel() error {
	_, err := c.call(CommandCancel)
	return err
}

// GetStatus retrieves the overlay's current state.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.call(CommandGetStatus)
	if err != nil {
		return nil, err
	}

	status := &StatusData{}
	if err := json.Unmarshal(resp.Data, status); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return status, nil
}

// Ping reports whether an overlay answers on the socket.
func (c *Client) Ping() error {
	_, err := c.call(CommandGetStatus)
	return err
}
