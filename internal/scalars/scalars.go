// Package scalars defines the custom GraphQL scalars used by generated schemas.
package scalars

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// storageLayouts are textual timestamp formats drivers may return for date columns.
var storageLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is the temporal scalar. Clients send and receive epoch milliseconds; inputs may also
// be numeric strings or RFC 3339 timestamps. Parsed values are time.Time in UTC, and
// serializing a parsed value returns the original epoch-millisecond integer.
func Date() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Date",
		Description: "A timestamp encoded as milliseconds since the Unix epoch.",
		Serialize: func(value interface{}) interface{} {
			t, ok := toTime(value)
			if !ok {
				return nil
			}
			return t.UnixMilli()
		},
		ParseValue: func(value interface{}) interface{} {
			t, ok := toTime(value)
			if !ok {
				return nil
			}
			return t
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			switch v := valueAST.(type) {
			case *ast.IntValue:
				return parseTimeString(v.Value)
			case *ast.FloatValue:
				return parseTimeString(v.Value)
			case *ast.StringValue:
				return parseTimeString(v.Value)
			default:
				return nil
			}
		},
	})
}

func parseTimeString(s string) interface{} {
	t, ok := toTime(s)
	if !ok {
		return nil
	}
	return t
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return v.UTC(), true
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case int32:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case float64:
		return floatMillis(v)
	case []byte:
		return toTime(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatMillis(f)
		}
		for _, layout := range storageLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// floatMillis rejects values with no int64 millisecond representation.
// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
func floatMillis(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)).UTC(), true
}
