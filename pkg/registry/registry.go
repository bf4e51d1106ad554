// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"immigration-workers/internal/crs"
)

const CurrentVersion = "1.0.0"

// FromCatalog wraps catalog for writing to disk.
func FromCatalog(catalog crs.Catalog, now time.Time) *ProgramRegistry {
	return &ProgramRegistry{
		Version:     CurrentVersion,
		LastUpdated: now.UTC().Format(time.RFC3339),
		Programs:    catalog,
	}
}

func LoadRegistry(path string) (*ProgramRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ProgramRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse program registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadCatalog reads and validates the catalog at path. An empty path yields
// the built-in catalog.
func LoadCatalog(path string) (crs.Catalog, error) {
	if path == "" {
		return crs.DefaultCatalog(), nil
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	if err := reg.Programs.Validate(); err != nil {
		return nil, fmt.Errorf("program registry %s: %w", path, err)
	}
	return reg.Programs, nil
}

func SaveRegistry(path string, reg *ProgramRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
