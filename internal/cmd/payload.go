package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadPayload reads a return object from a JSON or YAML file, selected by
// extension, into the untyped tree the normalizer consumes.
func loadPayload(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", path, err)
	}

	var payload map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse YAML payload %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse JSON payload %s: %w", path, err)
		}
	}
	return payload, nil
}
