package planner

import "strings"

// SortDirective is the optional order_column / order_method pair of a read-many query.
type SortDirective struct {
	Column    *string
	Direction *string
}

// OrderClause orders results by one column.
type OrderClause struct {
	Column    string
	Direction string
}

// CompileOrder returns exactly one clause when both column and direction are present
// and non-empty, else none. The direction token is passed through unvalidated.
func CompileOrder(d SortDirective) []OrderClause {
	if d.Column == nil || d.Direction == nil || *d.Column == "" || *d.Direction == "" {
		return nil
	}
	return []OrderClause{{Column: *d.Column, Direction: *d.Direction}}
}

// NormalizeDirection upper-cases a direction token and reports whether it is ASC or DESC.
func NormalizeDirection(direction string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(direction))
	return upper, upper == "ASC" || upper == "DESC"
}
