package planner

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"model-graphql/internal/introspection"
)

// ErrEmptyUpdate indicates an update plan with nothing to set.
var ErrEmptyUpdate = errors.New("update set cannot be empty")

// SQLQuery represents a planned SQL statement with bound args.
type SQLQuery struct {
	SQL  string
	Args []any
}

// PageRequest is a filtered, ordered window over an entity's rows.
type PageRequest struct {
	Conditions Conditions
	Order      []OrderClause
	Offset     uint64
	Limit      uint64
}

func columnNames(d Dialect, m introspection.ParsedModel) []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = d.Quote(f.Name)
	}
	return cols
}

// PlanFindByKey builds the SQL for a primary key lookup.
func PlanFindByKey(d Dialect, m introspection.ParsedModel, key any) (SQLQuery, error) {
	query, args, err := sq.Select(columnNames(d, m)...).
		From(d.Quote(m.Table)).
		Where(sq.Eq{d.Quote(m.PrimaryKey.Name): key}).
		PlaceholderFormat(d.Placeholder).
		ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// PlanFindPage builds the SQL for one page of filtered rows.
// Directions are emitted as given; callers validate them first.
func PlanFindPage(d Dialect, m introspection.ParsedModel, req PageRequest) (SQLQuery, error) {
	builder := sq.Select(columnNames(d, m)...).
		From(d.Quote(m.Table))
	if where := req.Conditions.Sqlizer(d); where != nil {
		builder = builder.Where(where)
	}
	for _, o := range req.Order {
		builder = builder.OrderBy(fmt.Sprintf("%s %s", d.Quote(o.Column), o.Direction))
	}
	query, args, err := builder.
		Limit(req.Limit).
		Offset(req.Offset).
		PlaceholderFormat(d.Placeholder).
		ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// PlanCount builds the SQL counting every row matching the conditions.
func PlanCount(d Dialect, m introspection.ParsedModel, conds Conditions) (SQLQuery, error) {
	builder := sq.Select("COUNT(*)").From(d.Quote(m.Table))
	if where := conds.Sqlizer(d); where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.PlaceholderFormat(d.Placeholder).ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// PlanInsert builds SQL for inserting a single row with the provided columns.
// Dialects with RETURNING return the primary key.
func PlanInsert(d Dialect, m introspection.ParsedModel, columns []string, values []any) (SQLQuery, error) {
	if len(columns) != len(values) {
		return SQLQuery{}, fmt.Errorf("insert has %d columns but %d values", len(columns), len(values))
	}

	suffix := ""
	if d.Returning {
		suffix = " RETURNING " + d.Quote(m.PrimaryKey.Name)
	}

	if len(columns) == 0 {
		query := fmt.Sprintf("INSERT INTO %s %s%s", d.Quote(m.Table), d.emptyInsert, suffix)
		return SQLQuery{SQL: query}, nil
	}

	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		quotedCols[i] = d.Quote(col)
	}

	builder := sq.Insert(d.Quote(m.Table)).
		Columns(quotedCols...).
		Values(values...).
		PlaceholderFormat(d.Placeholder)
	if suffix != "" {
		builder = builder.Suffix(suffix[1:])
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// PlanUpdate builds SQL for updating a single row by primary key.
// SET columns are emitted in sorted order.
func PlanUpdate(d Dialect, m introspection.ParsedModel, set map[string]any, key any) (SQLQuery, error) {
	if len(set) == 0 {
		return SQLQuery{}, ErrEmptyUpdate
	}

	setMap := make(map[string]any, len(set))
	for col, val := range set {
		setMap[d.Quote(col)] = val
	}

	query, args, err := sq.Update(d.Quote(m.Table)).
		SetMap(setMap).
		Where(sq.Eq{d.Quote(m.PrimaryKey.Name): key}).
		PlaceholderFormat(d.Placeholder).
		ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}
