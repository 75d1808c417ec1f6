package ipc

import (
	"encoding/json"
	"fmt"
	"io"
)

// CommandType names a control-socket command.
type CommandType string

const (
	CommandFullscreen CommandType = "FULLSCREEN"
	CommandCancel     CommandType = "CANCEL"
	CommandGetStatus  CommandType = "GET_STATUS"
)

const (
	statusOK    = "OK"
	statusError = "ERROR"
)

// Request is one newline-terminated JSON line sent to the overlay.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the overlay's single-line answer.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the GET_STATUS payload.
type StatusData struct {
	PID           int    `json:"pid"`
	Phase         string `json:"phase"`
	PointerX      int    `json:"pointer_x"`
	PointerY      int    `json:"pointer_y"`
	WindowCount   int    `json:"window_count"`
	HoverAppID    string `json:"hover_app_id,omitempty"`
	Backend       string `json:"backend"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func okResponse(data any) *Response {
	resp := &Response{Status: statusOK}
	if data == nil {
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return failure("failed to encode response: %v", err)
	}
	resp.Data = raw
	return resp
}

func failure(format string, args ...any) *Response {
	return &Response{Status: statusError, Error: fmt.Sprintf(format, args...)}
}

// Err converts an error response into a Go error.
func (r *Response) Err() error {
	if r.Status == statusError {
		return fmt.Errorf("overlay error: %s", r.Error)
	}
	return nil
}

// writeLine encodes v as a single JSON line.
func writeLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
