package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault     SourceKind = "default"
	SourceFile        SourceKind = "file"
	SourceSettingsHub SourceKind = "settings_hub"
	SourceEnv         SourceKind = "env"
)

type Source struct {
	Kind   SourceKind `json:"kind"`
	Name   string     `json:"name,omitempty"` // env variable
	File   string     `json:"file,omitempty"`
	Line   int        `json:"line,omitempty"`
	Column int        `json:"column,omitempty"`
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last writer
	Files   []string          // loaded files, in load order
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/screenshot-tool/config.yaml,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(defaultConfigDir(homeDir), "config.yaml"), nil
}

// SettingsHubPath returns the file the settings hub writes for this tool.
func SettingsHubPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "settings-hub", "settings", "screenshot-tool.yaml"), nil
}

// Load reads the configuration from the standard locations.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns per-key sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath merges, lowest priority first: defaults, the file at path,
// the settings hub file, then SCREENSHOT_* environment variables.
func LoadFromPath(path string) (*LoadResult, error) {
	hubPath, err := SettingsHubPath()
	if err != nil {
		hubPath = ""
	}
	return load(path, hubPath, os.Getenv)
}

func load(path, hubPath string, getenv func(string) string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	var files []string

	layers := []struct {
		path string
		kind SourceKind
	}{
		{path, SourceFile},
		{hubPath, SourceSettingsHub},
	}
	for _, layer := range layers {
		if layer.path == "" {
			continue
		}
		exists, err := pathExists(layer.path)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		layerRaw, layerSources, err := loadRawFile(layer.path, layer.kind)
		if err != nil {
			return nil, err
		}
		raw = raw.merge(layerRaw)
		for key, src := range layerSources {
			sources[key] = src
		}
		files = append(files, layer.path)
	}

	cfg := BuildEffectiveConfig(raw)
	if err := applyEnv(cfg, getenv, sources); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

func loadRawFile(path string, kind SourceKind) (RawConfig, map[string]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, collectSources(&doc, path, kind), nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func collectSources(doc *yaml.Node, file string, kind SourceKind) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, kind, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, kind SourceKind, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		valNode := node.Content[i+1]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out[path] = Source{
			Kind:   kind,
			File:   file,
			Line:   valNode.Line,
			Column: valNode.Column,
		}
		collectSourcesRec(valNode, file, kind, path, out)
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Path == "" {
		return err
	}
	if src, ok := sources[ve.Path]; ok {
		// Settings hub entries print like file entries.
		if src.Kind == SourceSettingsHub {
			src.Kind = SourceFile
		}
		ve.Source = src
	}
	return ve
}
