package sqltype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToScalar_IntegerTypes(t *testing.T) {
	intTypes := []string{
		"INTEGER", "integer",
		"BIGINT", "bigint",
		"INT", "int",
		"TINYINT", "tinyint",
		"SMALLINT", "MEDIUMINT", "SERIAL",
	}

	for _, tag := range intTypes {
		t.Run(tag, func(t *testing.T) {
			scalar, err := MapToScalar(tag)
			require.NoError(t, err)
			assert.Equal(t, Int, scalar)
			assert.Equal(t, "Int", scalar.String())
		})
	}
}

func TestMapToScalar_FloatTypes(t *testing.T) {
	for _, tag := range []string{"FLOAT", "REAL", "DOUBLE", "DECIMAL", "decimal", "NUMERIC"} {
		t.Run(tag, func(t *testing.T) {
			scalar, err := MapToScalar(tag)
			require.NoError(t, err)
			assert.Equal(t, Float, scalar)
			assert.Equal(t, "Float", scalar.String())
		})
	}
}

func TestMapToScalar_StringTypes(t *testing.T) {
	stringTypes := []string{
		"STRING", "TEXT", "CITEXT", "UUID",
		"CHAR", "varchar", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM",
	}

	for _, tag := range stringTypes {
		t.Run(tag, func(t *testing.T) {
			scalar, err := MapToScalar(tag)
			require.NoError(t, err)
			assert.Equal(t, String, scalar)
			assert.Equal(t, "String", scalar.String())
		})
	}
}

func TestMapToScalar_BooleanAndDateTypes(t *testing.T) {
	for _, tag := range []string{"BOOLEAN", "bool"} {
		scalar, err := MapToScalar(tag)
		require.NoError(t, err)
		assert.Equal(t, Boolean, scalar)
	}
	for _, tag := range []string{"DATE", "DATEONLY", "DATETIME", "timestamp"} {
		scalar, err := MapToScalar(tag)
		require.NoError(t, err)
		assert.Equal(t, Date, scalar)
		assert.Equal(t, "Date", scalar.String())
	}
}

func TestMapToScalar_StripsSizeSpecifiers(t *testing.T) {
	tests := []struct {
		tag      string
		expected Scalar
	}{
		{"varchar(255)", String},
		{"DECIMAL(10,2)", Float},
		{"int(11)", Int},
		{" tinyint(1) ", Int},
		{"datetime(6)", Date},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			scalar, err := MapToScalar(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scalar)
		})
	}
}

func TestMapToScalar_UnknownTag(t *testing.T) {
	for _, tag := range []string{"JSON", "BLOB", "GEOMETRY", ""} {
		t.Run(tag, func(t *testing.T) {
			_, err := MapToScalar(tag)
			require.Error(t, err)

			var unsupported *UnsupportedTypeError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, tag, unsupported.Tag)
		})
	}
}

func TestParseScalarName(t *testing.T) {
	for _, s := range []Scalar{String, Boolean, Int, Float, Date} {
		parsed, ok := ParseScalarName(s.String())
		require.True(t, ok)
		assert.Equal(t, s, parsed)
	}

	for _, name := range []string{"int", "DATE", "Vector", ""} {
		_, ok := ParseScalarName(name)
		assert.False(t, ok, name)
	}
}
