package naming

import (
	"strings"

	"github.com/jinzhu/inflection"
)

const (
	readPrefix         = "read_"
	readMultiplePrefix = "read_multiple_"
	createPrefix       = "create_"
	updatePrefix       = "update_"
	pageSuffix         = "_page"
)

// ReadOne returns the single-record query name for an entity.
// Example: "User" -> "read_User"
func ReadOne(entity string) string {
	return readPrefix + entity
}

// ReadMultiple returns the paginated query name for an entity.
// Example: "User" -> "read_multiple_User"
func ReadMultiple(entity string) string {
	return readMultiplePrefix + entity
}

// Create returns the create mutation name for an entity.
func Create(entity string) string {
	return createPrefix + entity
}

// Update returns the update mutation name for an entity.
func Update(entity string) string {
	return updatePrefix + entity
}

// PageType returns the paginated result type name for an entity.
// Example: "User" -> "User_page"
func PageType(entity string) string {
	return entity + pageSuffix
}

// Namer converts between entity names and storage table names.
type Namer struct {
	config Config
}

// New creates a Namer with the given configuration.
func New(cfg Config) *Namer {
	if cfg.PluralOverrides == nil {
		cfg.PluralOverrides = make(map[string]string)
	}
	if cfg.SingularOverrides == nil {
		cfg.SingularOverrides = make(map[string]string)
	}
	return &Namer{config: cfg}
}

// Default returns a Namer with default configuration
func Default() *Namer {
	return New(DefaultConfig())
}

// Pluralize converts a singular word to its plural form.
// Checks custom overrides first, then falls back to the inflection library.
func (n *Namer) Pluralize(word string) string {
	if override, ok := n.config.PluralOverrides[word]; ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize converts a plural word to its singular form.
// Checks custom overrides first, then falls back to the inflection library.
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// TableName returns the default storage table for an entity: its lower-cased plural.
// Example: "User" -> "users", "Person" -> "people"
func (n *Namer) TableName(entity string) string {
	return strings.ToLower(n.Pluralize(entity))
}

// EntityName converts a storage table to an entity name: the singular form in PascalCase.
// Only the last underscore-separated word is singularized.
// Example: "order_items" -> "OrderItem", "people" -> "Person"
func (n *Namer) EntityName(table string) string {
	parts := strings.Split(table, "_")
	last := len(parts) - 1
	parts[last] = n.Singularize(parts[last])
	return toPascalCase(strings.Join(parts, "_"))
}

// toPascalCase converts snake_case to PascalCase
func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}
