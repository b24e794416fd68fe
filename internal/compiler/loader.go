package compiler

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// document mirrors the on-disk YAML layout. Step and field bodies stay loose
// maps so that `next` and `validate` keep their polymorphic shapes.
type document struct {
	Name   string                    `yaml:"name"`
	Steps  map[string]map[string]any `yaml:"steps"`
	Fields map[string]map[string]any `yaml:"fields"`
}

// LoadBytes parses a YAML journey definition into a raw Spec.
func LoadBytes(data []byte) (*Spec, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse journey definition: %w", err)
	}

	spec := &Spec{
		Name:   doc.Name,
		Steps:  make(map[string]*domain.StepSpec, len(doc.Steps)),
		Fields: make(map[string]*domain.FieldSpec, len(doc.Fields)),
	}

	for path, body := range doc.Steps {
		var ss domain.StepSpec
		if err := decodeSpec(body, &ss); err != nil {
			return nil, &domain.ConfigurationError{
				Scope:  "step " + path,
				Detail: fmt.Sprintf("malformed step spec: %v", err),
			}
		}
		spec.Steps[path] = &ss
	}

	for key, body := range doc.Fields {
		var fs domain.FieldSpec
		if err := decodeSpec(body, &fs); err != nil {
			return nil, &domain.ConfigurationError{
				Scope:  "field " + key,
				Detail: fmt.Sprintf("malformed field spec: %v", err),
			}
		}
		spec.Fields[key] = &fs
	}

	return spec, nil
}

// LoadFile reads and parses a YAML journey definition from disk.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journey definition: %w", err)
	}
	return LoadBytes(data)
}
