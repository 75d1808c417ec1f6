package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEmitWritesSchemaLine(t *testing.T) {
	var buf bytes.Buffer
	e := New("screenshot-tool", &buf)
	e.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600)) }

	e.Emit(ArtifactCreated, map[string]any{"path": "/tmp/a.png", "width": 10})

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single line, got %q", line)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}
	if len(got) != 4 {
		t.Fatalf("keys = %v, want exactly event_type/timestamp/source/data", got)
	}
	if got["event_type"] != ArtifactCreated {
		t.Fatalf("event_type = %v", got["event_type"])
	}
	if got["timestamp"] != "2025-03-04T04:06:07Z" {
		t.Fatalf("timestamp = %v, want UTC RFC 3339", got["timestamp"])
	}
	source, _ := got["source"].(map[string]any)
	if source["tool"] != "screenshot-tool" {
		t.Fatalf("source = %v", got["source"])
	}
	data, _ := got["data"].(map[string]any)
	if data["path"] != "/tmp/a.png" || data["width"] != float64(10) {
		t.Fatalf("data = %v", got["data"])
	}
}

func TestDisabledStreamStillRunsHandlers(t *testing.T) {
	e := New("tool", nil)
	var seen []Event
	e.AddHandler(func(ev Event) { seen = append(seen, ev) })
	e.AddHandler(func(Event) { panic("broken transport") })

	e.Emit(Shutdown, nil)

	if len(seen) != 1 || seen[0].Type != Shutdown || seen[0].Source != "tool" {
		t.Fatalf("seen = %+v", seen)
	}
	if seen[0].Data == nil {
		t.Fatal("nil data should be replaced by an empty map")
	}
}

func TestSetOutputToggles(t *testing.T) {
	var buf bytes.Buffer
	e := New("tool", nil)
	e.Emit(OperationStarted, nil)
	if buf.Len() != 0 {
		t.Fatal("disabled emitter wrote output")
	}
	e.SetOutput(&buf)
	e.Emit(OperationStarted, nil)
	if !strings.Contains(buf.String(), `"event_type":"operation.started"`) {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestNewOperationIDIsUUID(t *testing.T) {
	id := NewOperationID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewOperationID() = %q, not a uuid: %v", id, err)
	}
	if id == NewOperationID() {
		t.Fatal("operation ids should be unique")
	}
}

func TestCatalogCoversLifecycle(t *testing.T) {
	known := map[string]bool{}
	for _, entry := range Catalog() {
		if entry.Description == "" || len(entry.Fields) == 0 {
			t.Errorf("catalog entry %q incomplete", entry.Type)
		}
		known[entry.Type] = true
	}
	for _, step := range Lifecycle() {
		for _, ev := range step.Events {
			if !known[ev] {
				t.Errorf("lifecycle step %d references unknown event %q", step.Step, ev)
			}
		}
	}
}
