// Package sqltype provides the shared mapping from storage type tags to GraphQL scalar types.
// The same table feeds schema rendering and filter-value coercion so the two never diverge.
package sqltype

import (
	"fmt"
	"strings"
)

// Scalar is a GraphQL scalar type produced for a storage column.
type Scalar int

const (
	// String covers fixed- and variable-length text, UUIDs and enums.
	String Scalar = iota
	// Boolean covers boolean storage types.
	Boolean
	// Int covers integer storage types.
	Int
	// Float covers floating-point and fixed-point storage types.
	Float
	// Date covers date and timestamp storage types.
	Date
)

// UnsupportedTypeError reports a storage tag that has no scalar mapping.
type UnsupportedTypeError struct {
	Tag string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported storage type %q", e.Tag)
}

var scalarsByTag = map[string]Scalar{
	// Model-layer tags
	"STRING":   String,
	"TEXT":     String,
	"CITEXT":   String,
	"UUID":     String,
	"BOOLEAN":  Boolean,
	"INTEGER":  Int,
	"BIGINT":   Int,
	"FLOAT":    Float,
	"REAL":     Float,
	"DOUBLE":   Float,
	"DECIMAL":  Float,
	"DATE":     Date,
	"DATEONLY": Date,

	// SQL catalog types
	"CHAR":       String,
	"VARCHAR":    String,
	"TINYTEXT":   String,
	"MEDIUMTEXT": String,
	"LONGTEXT":   String,
	"ENUM":       String,
	"BOOL":       Boolean,
	"INT":        Int,
	"SMALLINT":   Int,
	"MEDIUMINT":  Int,
	"TINYINT":    Int,
	"SERIAL":     Int,
	"NUMERIC":    Float,
	"DATETIME":   Date,
	"TIMESTAMP":  Date,
}

// MapToScalar converts a storage type tag to its GraphQL scalar.
// The input is case-insensitive. Size specifiers like (10,2) or (255) are stripped before matching.
func MapToScalar(tag string) (Scalar, error) {
	base := tag
	if idx := strings.Index(base, "("); idx != -1 {
		base = base[:idx]
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if scalar, ok := scalarsByTag[base]; ok {
		return scalar, nil
	}
	return 0, &UnsupportedTypeError{Tag: tag}
}

// String returns the GraphQL scalar type name for schema generation.
func (s Scalar) String() string {
	switch s {
	case Boolean:
		return "Boolean"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Date:
		return "Date"
	default:
		return "String"
	}
}

// ParseScalarName resolves a GraphQL scalar name ("Int", "Float", ...) produced by String.
// Matching is case-sensitive, as GraphQL names are.
func ParseScalarName(name string) (Scalar, bool) {
	for _, s := range []Scalar{String, Boolean, Int, Float, Date} {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
