package events

// CatalogEntry documents one event type.
type CatalogEntry struct {
	Type        string            `json:"event_type"`
	Description string            `json:"description"`
	Fields      map[string]string `json:"fields"`
}

// Catalog lists every event the tool emits.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Type:        ConfigResolved,
			Description: "Configuration was loaded and merged from file, settings hub and environment.",
			Fields: map[string]string{
				"config_path": "config file consulted",
				"backend":     "requested compositor backend",
				"output_dir":  "directory screenshots are saved to",
			},
		},
		{
			Type:        OperationStarted,
			Description: "A capture operation began.",
			Fields: map[string]string{
				"operation_id": "uuid shared with the matching operation.completed",
				"mode":         "interactive, instant, region, window or double_tap",
			},
		},
		{
			Type:        OperationCompleted,
			Description: "A capture operation finished, successfully or not.",
			Fields: map[string]string{
				"operation_id": "uuid from operation.started",
				"mode":         "capture mode",
				"status":       "saved, cancelled or failed",
				"duration_ms":  "wall time of the operation",
			},
		},
		{
			Type:        ArtifactCreated,
			Description: "A screenshot file was written.",
			Fields: map[string]string{
				"file_path":          "absolute file path",
				"file_type":          "always screenshot",
				"metadata.width":     "image width in pixels",
				"metadata.height":    "image height in pixels",
				"metadata.format":    "png or jpeg",
				"metadata.timestamp": "capture time, RFC 3339",
			},
		},
		{
			Type:        ErrorHandled,
			Description: "A failure was handled without crashing.",
			Fields: map[string]string{
				"stage": "where it happened: capture, save, window_capture",
				"error": "error message",
			},
		},
		{
			Type:        Shutdown,
			Description: "The process is exiting.",
			Fields: map[string]string{
				"exit_code": "process exit code",
			},
		},
	}
}

// LifecycleStep describes the order events appear in during one run.
type LifecycleStep struct {
	Step   int      `json:"step"`
	Events []string `json:"events"`
	Note   string   `json:"note"`
}

// Lifecycle describes the event sequence of a capture run.
func Lifecycle() []LifecycleStep {
	return []LifecycleStep{
		{Step: 1, Events: []string{ConfigResolved}, Note: "after configuration loads"},
		{Step: 2, Events: []string{OperationStarted}, Note: "before the first capture"},
		{Step: 3, Events: []string{ArtifactCreated, ErrorHandled}, Note: "per saved file or handled failure"},
		{Step: 4, Events: []string{OperationCompleted}, Note: "once the capture resolves or is cancelled"},
		{Step: 5, Events: []string{Shutdown}, Note: "last line before exit"},
	}
}
