package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
}

// Parse decodes data as a top-level mapping. Empty input yields an empty
// Config.
func Parse(data []byte, format Format) (Config, error) {
	var m map[string]any
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &m)
	case JSON:
		if len(strings.TrimSpace(string(data))) == 0 {
			return New(nil), nil
		}
		err = json.Unmarshal(data, &m)
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s config: %w", format, err)
	}
	return New(m), nil
}

// FromFile reads and parses a .yaml, .yml or .json file.
func FromFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func FromYAML(data []byte) (Config, error) { return Parse(data, YAML) }

func FromJSON(data []byte) (Config, error) { return Parse(data, JSON) }
