package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"model-graphql/internal/naming"
)

type modelFile struct {
	Entities []fileEntity `yaml:"entities"`
}

type fileEntity struct {
	Name       string          `yaml:"name"`
	Table      string          `yaml:"table"`
	Attributes []fileAttribute `yaml:"attributes"`
}

type fileAttribute struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	PrimaryKey    bool   `yaml:"primary_key"`
	AllowNull     *bool  `yaml:"allow_null"`
	Default       any    `yaml:"default"`
	AutoGenerated bool   `yaml:"auto_generated"`
}

// LoadFile reads entity descriptors from a YAML model file.
func LoadFile(path string, namer *naming.Namer) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	entities, err := Parse(data, namer)
	if err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}
	return entities, nil
}

// Parse decodes a YAML model document. Unknown keys are rejected.
// Entities without an explicit table get the namer's default table name.
func Parse(data []byte, namer *naming.Namer) ([]Entity, error) {
	if namer == nil {
		namer = naming.Default()
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc modelFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse models: %w", err)
	}

	entities := make([]Entity, 0, len(doc.Entities))
	for i, fe := range doc.Entities {
		if fe.Name == "" {
			return nil, fmt.Errorf("entity #%d: name is required", i+1)
		}
		entity := Entity{
			Name:       fe.Name,
			Table:      fe.Table,
			Attributes: make([]Attribute, 0, len(fe.Attributes)),
		}
		if entity.Table == "" {
			entity.Table = namer.TableName(fe.Name)
		}
		for j, fa := range fe.Attributes {
			if fa.Name == "" {
				return nil, fmt.Errorf("entity %s: attribute #%d: name is required", fe.Name, j+1)
			}
			attr := NewAttribute(fa.Name, fa.Type)
			attr.PrimaryKey = fa.PrimaryKey
			attr.AutoGenerated = fa.AutoGenerated
			if fa.AllowNull != nil {
				attr.AllowNull = *fa.AllowNull
			}
			if fa.Default != nil {
				def := fmt.Sprint(fa.Default)
				attr.Default = &def
			}
			entity.Attributes = append(entity.Attributes, attr)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
