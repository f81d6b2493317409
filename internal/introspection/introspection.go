// Package introspection normalizes entity descriptors into canonical field lists.
// The parsed models it produces feed both schema rendering and resolver synthesis.
package introspection

import (
	"fmt"

	"model-graphql/internal/descriptor"
	"model-graphql/internal/naming"
	"model-graphql/internal/sqltype"
)

// ImplicitKeyName is the primary key synthesized for entities that declare none.
const ImplicitKeyName = "id"

// CanonicalField is one entity field with its scalar type and derived flags.
type CanonicalField struct {
	Name string
	Type sqltype.Scalar
	// Required is true for the primary key, or when nulls are disallowed and no default exists.
	Required bool
	// RequiredToCreate marks fields accepted by the create mutation.
	RequiredToCreate bool
	Updatable        bool
	PrimaryKey       bool
	AutoGenerated    bool
}

// ParsedModel is the canonical view of one entity.
type ParsedModel struct {
	Name       string
	Table      string
	PrimaryKey CanonicalField
	// Fields are in attribute declaration order. The primary key appears exactly once.
	Fields []CanonicalField
	// CreateFields is Fields filtered to RequiredToCreate.
	CreateFields []CanonicalField
}

// Field returns the named field.
func (m ParsedModel) Field(name string) (CanonicalField, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CanonicalField{}, false
}

// DuplicateEntityError reports two descriptors sharing an entity name.
type DuplicateEntityError struct {
	Name string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate entity %q", e.Name)
}

// InvalidEntityError reports a descriptor that cannot produce a valid model.
type InvalidEntityError struct {
	Entity string
	Reason string
}

func (e *InvalidEntityError) Error() string {
	if e.Entity == "" {
		return "invalid entity: " + e.Reason
	}
	return fmt.Sprintf("invalid entity %q: %s", e.Entity, e.Reason)
}

// Introspect normalizes one entity descriptor.
// Unsupported attribute types surface as *sqltype.UnsupportedTypeError.
func Introspect(entity descriptor.Entity) (ParsedModel, error) {
	if entity.Name == "" {
		return ParsedModel{}, &InvalidEntityError{Reason: "name is required"}
	}
	if !naming.IsValidName(entity.Name) {
		return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: "name is not a valid GraphQL name"}
	}
	if naming.IsReservedTypeName(entity.Name) {
		return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: "name collides with a reserved type"}
	}

	model := ParsedModel{
		Name:   entity.Name,
		Table:  entity.Table,
		Fields: make([]CanonicalField, 0, len(entity.Attributes)+1),
	}

	hasPrimaryKey := false
	seen := make(map[string]struct{}, len(entity.Attributes))
	for _, attr := range entity.Attributes {
		if !naming.IsValidName(attr.Name) {
			return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: fmt.Sprintf("attribute %q is not a valid GraphQL name", attr.Name)}
		}
		if _, ok := seen[attr.Name]; ok {
			return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: fmt.Sprintf("attribute %q is declared twice", attr.Name)}
		}
		seen[attr.Name] = struct{}{}

		scalar, err := sqltype.MapToScalar(attr.Type)
		if err != nil {
			return ParsedModel{}, fmt.Errorf("entity %s attribute %s: %w", entity.Name, attr.Name, err)
		}

		field := CanonicalField{
			Name:          attr.Name,
			Type:          scalar,
			PrimaryKey:    attr.PrimaryKey,
			AutoGenerated: attr.AutoGenerated,
		}
		if attr.PrimaryKey {
			if hasPrimaryKey {
				return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: "more than one primary key attribute"}
			}
			hasPrimaryKey = true
			field.Required = true
			model.PrimaryKey = field
		} else {
			field.Required = !attr.AllowNull && !attr.HasDefault()
			field.RequiredToCreate = !attr.AutoGenerated
			field.Updatable = true
		}
		model.Fields = append(model.Fields, field)
	}

	if !hasPrimaryKey {
		if _, ok := seen[ImplicitKeyName]; ok {
			return ParsedModel{}, &InvalidEntityError{Entity: entity.Name, Reason: fmt.Sprintf("attribute %q must be the primary key when no other key is declared", ImplicitKeyName)}
		}
		model.PrimaryKey = implicitKey()
		model.Fields = append([]CanonicalField{model.PrimaryKey}, model.Fields...)
	}

	for _, f := range model.Fields {
		if f.RequiredToCreate {
			model.CreateFields = append(model.CreateFields, f)
		}
	}
	return model, nil
}

// IntrospectAll normalizes every descriptor in order. Duplicate names are rejected
// before any model is built; the first failing entity aborts the call.
func IntrospectAll(entities []descriptor.Entity) ([]ParsedModel, error) {
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.Name]; ok {
			return nil, &DuplicateEntityError{Name: e.Name}
		}
		seen[e.Name] = struct{}{}
	}

	models := make([]ParsedModel, 0, len(entities))
	for _, e := range entities {
		model, err := Introspect(e)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

func implicitKey() CanonicalField {
	return CanonicalField{
		Name:          ImplicitKeyName,
		Type:          sqltype.Int,
		Required:      true,
		PrimaryKey:    true,
		AutoGenerated: true,
	}
}
