package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCompileOrder(t *testing.T) {
	tests := []struct {
		name      string
		directive SortDirective
		expected  []OrderClause
	}{
		{"both present", SortDirective{Column: strPtr("name"), Direction: strPtr("DESC")}, []OrderClause{{Column: "name", Direction: "DESC"}}},
		{"direction not validated", SortDirective{Column: strPtr("name"), Direction: strPtr("sideways")}, []OrderClause{{Column: "name", Direction: "sideways"}}},
		{"column only", SortDirective{Column: strPtr("name")}, nil},
		{"direction only", SortDirective{Direction: strPtr("ASC")}, nil},
		{"empty column", SortDirective{Column: strPtr(""), Direction: strPtr("ASC")}, nil},
		{"neither", SortDirective{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompileOrder(tt.directive))
		})
	}
}

func TestNormalizeDirection(t *testing.T) {
	for _, in := range []string{"asc", "ASC", " Desc "} {
		_, ok := NormalizeDirection(in)
		assert.True(t, ok, in)
	}
	dir, ok := NormalizeDirection("desc")
	assert.True(t, ok)
	assert.Equal(t, "DESC", dir)

	_, ok = NormalizeDirection("ASC; DROP TABLE users")
	assert.False(t, ok)
}
