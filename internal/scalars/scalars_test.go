package scalars

import (
	"math"
	"testing"
	"time"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScalar_Serialize(t *testing.T) {
	scalar := Date()

	input := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, input.UnixMilli(), scalar.Serialize(input))
	assert.Equal(t, input.UnixMilli(), scalar.Serialize(&input))
	assert.Equal(t, input.UnixMilli(), scalar.Serialize("2024-01-15 10:30:00"))
	assert.Equal(t, input.UnixMilli(), scalar.Serialize([]byte("2024-01-15T10:30:00Z")))
	assert.Nil(t, scalar.Serialize("yesterday"))
	assert.Nil(t, scalar.Serialize(true))
}

func TestDateScalar_ParseValue(t *testing.T) {
	scalar := Date()

	parsed := scalar.ParseValue(float64(1000))
	require.IsType(t, time.Time{}, parsed)
	assert.Equal(t, time.UnixMilli(1000).UTC(), parsed)

	assert.Equal(t, time.UnixMilli(2000).UTC(), scalar.ParseValue("2000"))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), scalar.ParseValue("2024-01-02T04:04:05+01:00"))
	assert.Nil(t, scalar.ParseValue("not-a-date"))
	assert.Nil(t, scalar.ParseValue(""))
	assert.Nil(t, scalar.ParseValue(nil))
}

func TestDateScalar_ParseLiteral(t *testing.T) {
	scalar := Date()

	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), scalar.ParseLiteral(&ast.IntValue{Value: "1700000000000"}))
	assert.Equal(t, time.UnixMilli(5).UTC(), scalar.ParseLiteral(&ast.StringValue{Value: "5"}))
	assert.Nil(t, scalar.ParseLiteral(&ast.BooleanValue{Value: true}))
}

func TestDateScalar_RoundTrip(t *testing.T) {
	scalar := Date()

	for _, ms := range []int64{0, 1, 1000, -86400000, 1700000000123, 253402300799999} {
		assert.Equal(t, ms, scalar.Serialize(scalar.ParseValue(ms)), "ms=%d", ms)
		assert.Equal(t, ms, scalar.Serialize(scalar.ParseValue(float64(ms))), "ms=%d", ms)
	}
}

func TestToTime(t *testing.T) {
	got, ok := toTime(int64(1500))
	require.True(t, ok)
	assert.Equal(t, int64(1500), got.UnixMilli())

	_, ok = toTime(struct{}{})
	assert.False(t, ok)
}

func TestDateScalar_RejectsOutOfRangeFloats(t *testing.T) {
	scalar := Date()

	for _, v := range []interface{}{1e19, -1e19, math.Inf(1), math.NaN(), float64(math.MaxInt64), "1e19", "-1e300"} {
		assert.Nil(t, scalar.ParseValue(v), "value=%v", v)
	}
	assert.Nil(t, scalar.ParseLiteral(&ast.FloatValue{Value: "1e19"}))

	parsed := scalar.ParseValue(-8.64e15)
	require.IsType(t, time.Time{}, parsed)
	assert.Equal(t, int64(-8.64e15), parsed.(time.Time).UnixMilli())
}
