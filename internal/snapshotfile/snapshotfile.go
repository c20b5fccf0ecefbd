// Package snapshotfile reads path calculation requests from JSON or YAML
// files and reloads them when they change on disk.
package snapshotfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cultivatehq/cultivate/backend/internal/service"
)

// ErrEmptyFile is returned for files without any document.
var ErrEmptyFile = errors.New("snapshot file is empty")

// Load reads a snapshot file. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func Load(path string) (service.PathRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return service.PathRequest{}, fmt.Errorf("read snapshot file: %w", err)
	}
	req, err := Parse(raw, isYAML(path))
	if err != nil {
		return service.PathRequest{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return req, nil
}

// Parse decodes a snapshot document. YAML documents use the same field
// names as the JSON request body.
func Parse(raw []byte, asYAML bool) (service.PathRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return service.PathRequest{}, ErrEmptyFile
	}

	if asYAML {
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return service.PathRequest{}, err
		}
		if doc == nil {
			return service.PathRequest{}, ErrEmptyFile
		}
		// Round-trip through JSON so both formats share one set of tags.
		converted, err := json.Marshal(doc)
		if err != nil {
			return service.PathRequest{}, err
		}
		raw = converted
	}

	var req service.PathRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return service.PathRequest{}, err
	}
	return req, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Write stores req at path in the format implied by its extension.
func Write(path string, req service.PathRequest) error {
	raw, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if isYAML(path) {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if raw, err = yaml.Marshal(doc); err != nil {
			return fmt.Errorf("encode snapshot yaml: %w", err)
		}
	} else {
		raw = append(raw, '\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
