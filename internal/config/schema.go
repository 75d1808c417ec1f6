package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://screenshot-tool.local/config.schema.json"

// Schema returns the JSON schema of the config file.
func Schema() map[string]any {
	str := map[string]any{"type": "string"}
	boolean := map[string]any{"type": "boolean"}
	positive := map[string]any{"type": "integer", "minimum": 1}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"$id":                  schemaURL,
		"title":                "screenshot-tool config",
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"wayland_capture": str,
			"output_dir":      str,
			"default_format": map[string]any{
				"type": "string",
				"enum": []any{"png", "jpg", "jpeg", "webp"},
			},
			"default_quality": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 100,
			},
			"double_tap_ms":       positive,
			"enable_sound":        boolean,
			"enable_notification": boolean,
			"enable_clipboard":    boolean,
			"lock_file":           str,
			"double_tap_file":     str,
			"silent_output_dir":   str,
			"hooks_dir":           str,
			"capture_timeout_ms":  positive,
			"backend": map[string]any{
				"type": "string",
				"enum": []any{BackendAuto, BackendX11, BackendWayfire, BackendNone},
			},
			"magnifier": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"radius": map[string]any{"type": "integer", "minimum": 20},
					"zoom":   positive,
				},
			},
		},
	}
}

func compileSchema() (*jsonschema.Schema, error) {
	data, err := json.Marshal(Schema())
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
}

// ValidateDocument checks a YAML config document against Schema.
func ValidateDocument(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	// Round-trip through JSON so the validator sees JSON value types.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	var instance any
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return err
	}

	if err := schema.Validate(instance); err != nil {
		return err
	}
	return nil
}

// ValidateFile runs ValidateDocument on a file and then loads it the same
// way LoadFromPath does, without the settings hub or environment.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) != "" {
		if err := ValidateDocument(data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	_, err = load(path, "", func(string) string { return "" })
	return err
}
