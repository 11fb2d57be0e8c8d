package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/khushi6simplex/js2analytics-sub000/models"
	"github.com/khushi6simplex/js2analytics-sub000/sources"
)

// Source kinds a binding file may refer to.
const (
	SourceWFS      = "wfs"
	SourceAPI      = "api"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
	SourceSQLite   = "sqlite"
)

// LoadReferenceTable reads the division → district table from a YAML file.
// An empty path yields the built-in table.
func LoadReferenceTable(path string) (models.ReferenceTable, error) {
	if path == "" {
		return models.DefaultReferenceTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ReferenceTable{}, fmt.Errorf("error reading jurisdiction file: %w", err)
	}
	return ParseReferenceTable(data)
}

// ParseReferenceTable decodes a YAML reference table and rejects tables
// without divisions or with unnamed entries.
func ParseReferenceTable(data []byte) (models.ReferenceTable, error) {
	var table models.ReferenceTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil {
		return models.ReferenceTable{}, fmt.Errorf("error parsing jurisdiction file: %w", err)
	}
	if len(table.Divisions) == 0 {
		return models.ReferenceTable{}, fmt.Errorf("jurisdiction file lists no divisions")
	}
	for i, d := range table.Divisions {
		if d.Name == "" {
			return models.ReferenceTable{}, fmt.Errorf("division %d has no name", i+1)
		}
		for _, district := range d.Districts {
			if district == "" {
				return models.ReferenceTable{}, fmt.Errorf("division %s lists an empty district", d.Name)
			}
		}
	}
	return table, nil
}

type bindingFile struct {
	Bindings []sources.Binding `yaml:"bindings"`
}

// LoadBindings reads feature set bindings from a YAML file. An empty path
// yields DefaultBindings.
func LoadBindings(path, crs string) ([]sources.Binding, error) {
	if path == "" {
		return DefaultBindings(crs), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading bindings file: %w", err)
	}
	return ParseBindings(data, crs)
}

// ParseBindings decodes a bindings file. Bindings without a CRS inherit crs.
func ParseBindings(data []byte, crs string) ([]sources.Binding, error) {
	var file bindingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing bindings file: %w", err)
	}
	seen := make(map[string]bool)
	for i := range file.Bindings {
		b := &file.Bindings[i]
		if b.Name == "" || b.Source == "" {
			return nil, fmt.Errorf("binding %d needs a name and a source", i+1)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("duplicate binding %q", b.Name)
		}
		seen[b.Name] = true
		if b.CRS == "" {
			b.CRS = crs
		}
	}
	return file.Bindings, nil
}

// DefaultBindings maps every feature set to its GeoServer layer. Works live
// in a shadow and a primary layer that are read together.
func DefaultBindings(crs string) []sources.Binding {
	live := &sources.BoolFilter{Property: "isdeleted", Value: false}
	return []sources.Binding{
		{Name: "villages", Source: SourceWFS, Collections: []string{"jalyukt:project_villages"}, CRS: crs},
		{Name: "waterbudgets", Source: SourceWFS, Collections: []string{"jalyukt:water_budget"}, Filter: live, CRS: crs},
		{Name: "subplans", Source: SourceWFS, Collections: []string{"jalyukt:subplans"}, Filter: live, CRS: crs},
		{Name: "works", Source: SourceWFS, Collections: []string{"jalyukt:works_shadow", "jalyukt:works"}, Filter: live, CRS: crs},
		{Name: "attachments", Source: SourceWFS, Collections: []string{"jalyukt:work_attachments"}, CRS: crs},
	}
}
