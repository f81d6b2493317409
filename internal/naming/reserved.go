package naming

import "strings"

// reservedTypeNames are type names the generated document declares itself
// or that GraphQL defines as built-in scalars.
var reservedTypeNames = map[string]bool{
	"query":        true,
	"mutation":     true,
	"subscription": true,
	"int":          true,
	"float":        true,
	"string":       true,
	"boolean":      true,
	"id":           true,
	"date":         true,
	"filteroption": true,
}

// IsReservedTypeName reports whether an entity name would collide with a
// built-in or generated type in the schema document.
func IsReservedTypeName(name string) bool {
	lowerName := strings.ToLower(name)
	if strings.HasPrefix(lowerName, "__") {
		return true
	}
	if strings.HasSuffix(lowerName, pageSuffix) {
		return true
	}
	return reservedTypeNames[lowerName]
}

// IsValidName reports whether s matches the GraphQL name grammar /[_A-Za-z][_0-9A-Za-z]*/.
func IsValidName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
