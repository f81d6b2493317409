// Package descriptor defines the entity descriptors that drive schema and resolver
// synthesis, and loads them from YAML model files or a MySQL catalog.
package descriptor

// Entity describes one data record type: a name, its storage table and ordered attributes.
type Entity struct {
	Name       string
	Table      string
	Attributes []Attribute
}

// Attribute describes one entity attribute as declared by the model layer.
type Attribute struct {
	Name          string
	Type          string
	PrimaryKey    bool
	AllowNull     bool
	Default       *string
	AutoGenerated bool
}

// NewAttribute returns a nullable, non-key attribute of the given storage type.
func NewAttribute(name, storageType string) Attribute {
	return Attribute{Name: name, Type: storageType, AllowNull: true}
}

// HasDefault reports whether the attribute declares a default value.
func (a Attribute) HasDefault() bool {
	return a.Default != nil
}

// Names returns the entity names in declaration order.
func Names(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
