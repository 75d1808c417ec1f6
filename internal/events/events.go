// Package events emits structured lifecycle events as single JSON lines,
// separate from diagnostic logging.
//
// Line format:
//
//	{"timestamp":"...","event_type":"...","source":{"tool":"..."},"data":{...}}
package events

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	ConfigResolved     = "config.resolved"
	OperationStarted   = "operation.started"
	OperationCompleted = "operation.completed"
	ArtifactCreated    = "artifact.created"
	ErrorHandled       = "error.handled"
	Shutdown           = "shutdown"
)

// Event is what extra handlers receive.
type Event struct {
	Type      string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
}

// Handler receives every emitted event.
type Handler func(Event)

// Emitter writes events to a stream and fans them out to handlers.
type Emitter struct {
	mu       sync.Mutex
	source   string
	sink     slog.Handler
	handlers []Handler
	now      func() time.Time
}

// New creates an emitter writing to w. A nil w disables the stream; handlers
// still run.
func New(source string, w io.Writer) *Emitter {
	e := &Emitter{source: source, now: time.Now}
	e.SetOutput(w)
	return e
}

// SetOutput redirects the JSON stream. nil disables it.
func (e *Emitter) SetOutput(w io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w == nil {
		e.sink = nil
		return
	}
	e.sink = slog.NewJSONHandler(w, &slog.HandlerOptions{ReplaceAttr: eventAttrs})
}

// eventAttrs maps slog's built-in keys onto the event schema.
func eventAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.LevelKey:
		return slog.Attr{}
	case slog.MessageKey:
		return slog.String("event_type", a.Value.String())
	}
	return a
}

// SetSource changes the source tool name.
func (e *Emitter) SetSource(source string) {
	e.mu.Lock()
	e.source = source
	e.mu.Unlock()
}

// AddHandler registers an extra transport.
func (e *Emitter) AddHandler(h Handler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, h)
	e.mu.Unlock()
}

// Emit publishes one event. Write and handler failures are swallowed.
func (e *Emitter) Emit(eventType string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}

	e.mu.Lock()
	ev := Event{Type: eventType, Timestamp: e.now(), Source: e.source, Data: data}
	sink := e.sink
	handlers := append([]Handler(nil), e.handlers...)
	e.mu.Unlock()

	if sink != nil {
		r := slog.NewRecord(ev.Timestamp, slog.LevelInfo, ev.Type, 0)
		r.AddAttrs(
			slog.Group("source", slog.String("tool", ev.Source)),
			slog.Any("data", ev.Data),
		)
		_ = sink.Handle(context.Background(), r)
	}

	for _, h := range handlers {
		runHandler(h, ev)
	}
}

func runHandler(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("event handler panicked", "event_type", ev.Type, "panic", r)
		}
	}()
	h(ev)
}

// NewOperationID returns an id correlating an operation's started and
// completed events.
func NewOperationID() string {
	return uuid.NewString()
}

var std = New("screenshot-tool", os.Stderr)

// Default returns the process-wide emitter.
func Default() *Emitter { return std }

// Configure sets the process-wide source and whether events reach stderr.
func Configure(source string, stderr bool) {
	std.SetSource(source)
	if stderr {
		std.SetOutput(os.Stderr)
	} else {
		std.SetOutput(nil)
	}
}

// Emit publishes through the process-wide emitter.
func Emit(eventType string, data map[string]any) {
	std.Emit(eventType, data)
}
