package lessons

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk form of a lesson collection.
type Catalog struct {
	Lessons []*Lesson `yaml:"lessons"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]*Lesson, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("lessons: decode catalog: %w", err)
	}
	for _, l := range cat.Lessons {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return cat.Lessons, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) ([]*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadInto registers every lesson of the catalog at path into r.
func LoadInto(r *Registry, path string) (int, error) {
	ls, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	for _, l := range ls {
		if err := r.Register(l); err != nil {
			return 0, err
		}
	}
	return len(ls), nil
}

// Marshal encodes lessons as a YAML catalog, the inverse of Parse.
func Marshal(ls []*Lesson) ([]byte, error) {
	return yaml.Marshal(Catalog{Lessons: ls})
}
