package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cultivatehq/cultivate/backend/internal/service"
)

// WriteDataset serializes the dataset into contacts.json and connections.json under the provided directory.
func WriteDataset(dataset service.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "contacts.json"), dataset.Contacts); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "connections.json"), dataset.Connections)
}

// ReadDataset loads a dataset previously written by WriteDataset.
func ReadDataset(dir string) (service.Dataset, error) {
	var ds service.Dataset
	if err := readJSON(filepath.Join(dir, "contacts.json"), &ds.Contacts); err != nil {
		return service.Dataset{}, err
	}
	if err := readJSON(filepath.Join(dir, "connections.json"), &ds.Connections); err != nil {
		return service.Dataset{}, err
	}
	return ds, nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	return writeJSON(path, v)
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, dst any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		return fmt.Errorf("decode json from %s: %w", path, err)
	}
	return nil
}
