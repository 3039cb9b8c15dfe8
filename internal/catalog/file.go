package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Sections []Section `yaml:"sections"`
}

// LoadFile reads sections from a YAML file of the form
//
//	sections:
//	  - id: dev
//	    title: Development tools
//	    tools:
//	      - id: cursor
//	        name: Cursor
func LoadFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, errors.New("LoadFile: no sections")
	}
	for _, s := range f.Sections {
		for _, t := range s.Tools {
			if t.ID == "" || t.Name == "" {
				return nil, fmt.Errorf("LoadFile: section %q has a tool without id or name", s.Title)
			}
		}
	}
	return f.Sections, nil
}
