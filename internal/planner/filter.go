// Package planner compiles read-many filter and sort inputs into conditions and
// turns them, together with create/read/update requests, into SQL plans.
package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mitchellh/mapstructure"

	"model-graphql/internal/sqltype"
)

// FilterDescriptor is one filter term supplied to a read-many query.
type FilterDescriptor struct {
	ValueType  string `mapstructure:"value_type"`
	ColumnName string `mapstructure:"column_name"`
	ColumnKey  string `mapstructure:"column_key"`
	Value      string `mapstructure:"value"`
}

// Column returns the filtered column: the raw column key when set, else the column name.
func (f FilterDescriptor) Column() string {
	if f.ColumnKey != "" {
		return f.ColumnKey
	}
	return f.ColumnName
}

// Op is the comparison a condition applies.
type Op int

const (
	// OpEqual matches one value exactly.
	OpEqual Op = iota
	// OpLike is a case-sensitive substring match. Values[0] is the LIKE pattern,
	// wildcards in the substring escaped with likeEscape.
	OpLike
	// OpBetween matches an inclusive [Values[0], Values[1]] range.
	OpBetween
)

func (o Op) String() string {
	switch o {
	case OpLike:
		return "LIKE"
	case OpBetween:
		return "BETWEEN"
	default:
		return "="
	}
}

// Condition is one compiled filter term.
type Condition struct {
	Column string
	Op     Op
	Values []any
}

func (c Condition) String() string {
	switch c.Op {
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN %v AND %v", c.Column, c.Values[0], c.Values[1])
	default:
		return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Values[0])
	}
}

// MalformedFilterError reports a filter term whose value cannot be coerced to its declared type.
type MalformedFilterError struct {
	Index     int
	ValueType string
	Value     string
	Reason    string
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("filter_options[%d]: %s (value_type %q, value %q)", e.Index, e.Reason, e.ValueType, e.Value)
}

// DecodeFilters converts the raw filter_options argument into descriptors.
// A nil input yields no filters.
func DecodeFilters(raw any) ([]FilterDescriptor, error) {
	if raw == nil {
		return nil, nil
	}
	var filters []FilterDescriptor
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &filters,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &MalformedFilterError{Index: -1, Reason: err.Error()}
	}
	return filters, nil
}

// Compile turns filter descriptors into conditions, in input order. Conditions combine with AND.
//
//	Int    exact match after integer parsing
//	Float  exact match after float parsing
//	String case-sensitive substring match, the value escaped and wrapped in % wildcards
//	Date   inclusive range of exactly two comma-separated epoch-millisecond values
//	other  exact match on the raw value
func Compile(filters []FilterDescriptor) ([]Condition, error) {
	conditions := make([]Condition, 0, len(filters))
	for i, f := range filters {
		cond, err := compileOne(f)
		if err != nil {
			err.Index = i
			return nil, err
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

func compileOne(f FilterDescriptor) (Condition, *MalformedFilterError) {
	malformed := func(reason string) *MalformedFilterError {
		return &MalformedFilterError{ValueType: f.ValueType, Value: f.Value, Reason: reason}
	}

	column := f.Column()
	if column == "" {
		return Condition{}, malformed("column_name or column_key is required")
	}

	scalar, known := sqltype.ParseScalarName(f.ValueType)
	if !known {
		return Condition{Column: column, Op: OpEqual, Values: []any{f.Value}}, nil
	}

	switch scalar {
	case sqltype.Int:
		n, err := strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64)
		if err != nil {
			return Condition{}, malformed("value is not an integer")
		}
		return Condition{Column: column, Op: OpEqual, Values: []any{n}}, nil
	case sqltype.Float:
		n, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
		if err != nil {
			return Condition{}, malformed("value is not a number")
		}
		return Condition{Column: column, Op: OpEqual, Values: []any{n}}, nil
	case sqltype.String:
		return Condition{Column: column, Op: OpLike, Values: []any{"%" + escapeLike(f.Value) + "%"}}, nil
	case sqltype.Date:
		parts := strings.Split(f.Value, ",")
		if len(parts) != 2 {
			return Condition{}, malformed("date range must be two comma-separated epoch milliseconds")
		}
		bounds := make([]any, 2)
		for i, part := range parts {
			ms, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return Condition{}, malformed("date range bound is not epoch milliseconds")
			}
			bounds[i] = time.UnixMilli(ms).UTC()
		}
		return Condition{Column: column, Op: OpBetween, Values: bounds}, nil
	default:
		return Condition{Column: column, Op: OpEqual, Values: []any{f.Value}}, nil
	}
}

// Conditions is an AND-combined list of compiled conditions.
type Conditions []Condition

// Sqlizer renders the conditions as a squirrel predicate with columns quoted for d.
// It returns nil when there are no conditions.
func (c Conditions) Sqlizer(d Dialect) sq.Sqlizer {
	if len(c) == 0 {
		return nil
	}
	and := make(sq.And, 0, len(c))
	for _, cond := range c {
		column := d.Quote(cond.Column)
		switch cond.Op {
		case OpLike:
			pattern, _ := cond.Values[0].(string)
			and = append(and, d.Substring(column, pattern))
		case OpBetween:
			and = append(and, sq.GtOrEq{column: cond.Values[0]}, sq.LtOrEq{column: cond.Values[1]})
		default:
			and = append(and, sq.Eq{column: cond.Values[0]})
		}
	}
	return and
}

// Columns returns the distinct columns referenced, in first-use order.
func (c Conditions) Columns() []string {
	seen := make(map[string]struct{}, len(c))
	out := make([]string, 0, len(c))
	for _, cond := range c {
		if _, ok := seen[cond.Column]; ok {
			continue
		}
		seen[cond.Column] = struct{}{}
		out = append(out, cond.Column)
	}
	return out
}

// likeEscape is the LIKE escape character. It is not a backslash because MySQL and
// PostgreSQL disagree on backslashes inside string literals.
const likeEscape = '!'

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes every character of s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// likeSubstring recovers the literal substring from a %...% pattern built by Compile.
func likeSubstring(pattern string) string {
	runes := []rune(strings.TrimPrefix(pattern, "%"))
	var b strings.Builder
	b.Grow(len(runes))
	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == likeEscape && i+1 < len(runes):
			i++
			b.WriteRune(runes[i])
		case runes[i] == '%' && i == len(runes)-1:
			// closing wildcard
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
