package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a schema from a YAML file.
func LoadYAML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	raw := &Schema{}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	s := New(raw.Source)
	s.Database = raw.Database
	for _, t := range raw.Tables {
		s.Add(t)
	}
	return s, nil
}

// WriteYAML writes the schema to a YAML file at the given path.
func (s *Schema) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ToYAML returns the schema as a YAML byte slice.
func (s *Schema) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// Summary returns a human-readable summary of the schema.
func (s *Schema) Summary() string {
	var totalCols, totalFKs, totalPKs int

	for _, t := range s.Tables {
		totalCols += len(t.Columns)
		totalFKs += len(t.Associations)
		for _, c := range t.Columns {
			if c.IsPrimaryKey {
				totalPKs++
			}
		}
	}

	return fmt.Sprintf(
		"Found %d tables, %d columns (%d primary key), %d foreign-key associations",
		len(s.Tables), totalCols, totalPKs, totalFKs,
	)
}
