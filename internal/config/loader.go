package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a configuration file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// The document is checked against the configuration schema before it is
// decoded. Missing fields are filled with defaults; semantic validation is
// left to Validate so that flag overrides can be applied first.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*Config, error) {
	var doc interface{}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if doc == nil {
		cfg := Default()
		return cfg, nil
	}

	normalizeDelay(doc)

	// Normalize through JSON so the schema sees plain JSON values and the
	// struct decode applies the same field names for both formats.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config is not representable as JSON: %w", err)
	}

	if err := validateSchema(normalized); err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// normalizeDelay turns a numeric delay ("delay: 50") into its string form.
func normalizeDelay(doc interface{}) {
	m, ok := doc.(map[string]interface{})
	if !ok {
		return
	}
	switch v := m["delay"].(type) {
	case int:
		m["delay"] = strconv.Itoa(v)
	case float64:
		m["delay"] = strconv.FormatFloat(v, 'f', -1, 64)
	}
}
