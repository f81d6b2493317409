// Package store implements the resolver data-access capability on top of database/sql
// using the plans built by the planner package.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"model-graphql/internal/dbexec"
	"model-graphql/internal/introspection"
	"model-graphql/internal/planner"
	"model-graphql/internal/resolver"
	"model-graphql/internal/sqltype"
)

// ErrCreatedRowMissing indicates an insert succeeded but the new row could not be read back.
var ErrCreatedRowMissing = errors.New("created row could not be read back")

// UnknownColumnError reports a create or update field that the model does not declare.
type UnknownColumnError struct {
	Entity string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("%s has no writable column %q", e.Entity, e.Column)
}

// InvalidSortError reports an order direction other than ASC or DESC.
type InvalidSortError struct {
	Direction string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("invalid order_method %q (use ASC or DESC)", e.Direction)
}

// SQLStore serves one model from one table.
type SQLStore struct {
	executor dbexec.QueryExecutor
	dialect  planner.Dialect
	model    introspection.ParsedModel
}

var _ resolver.Store = (*SQLStore)(nil)

// New creates a store for model that runs SQL through executor.
func New(executor dbexec.QueryExecutor, dialect planner.Dialect, model introspection.ParsedModel) *SQLStore {
	return &SQLStore{executor: executor, dialect: dialect, model: model}
}

// Factory returns a resolver.StoreFactory sharing one executor and dialect across models.
func Factory(executor dbexec.QueryExecutor, dialect planner.Dialect) resolver.StoreFactory {
	return func(model introspection.ParsedModel) (resolver.Store, error) {
		if model.Table == "" {
			return nil, fmt.Errorf("model %s has no table", model.Name)
		}
		return New(executor, dialect, model), nil
	}
}

// FindByKey returns the row with the given primary key, or nil when none exists.
func (s *SQLStore) FindByKey(ctx context.Context, key any) (resolver.Record, error) {
	plan, err := planner.PlanFindByKey(s.dialect, s.model, key)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindAndCount runs the page query and the count query concurrently.
func (s *SQLStore) FindAndCount(ctx context.Context, q resolver.Query) (resolver.Page, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return resolver.Page{}, fmt.Errorf("offset and limit must be zero or greater")
	}
	order := make([]planner.OrderClause, len(q.Order))
	for i, o := range q.Order {
		direction, ok := planner.NormalizeDirection(o.Direction)
		if !ok {
			return resolver.Page{}, &InvalidSortError{Direction: o.Direction}
		}
		order[i] = planner.OrderClause{Column: o.Column, Direction: direction}
	}

	pagePlan, err := planner.PlanFindPage(s.dialect, s.model, planner.PageRequest{
		Conditions: q.Conditions,
		Order:      order,
		Offset:     uint64(q.Offset),
		Limit:      uint64(q.Limit),
	})
	if err != nil {
		return resolver.Page{}, err
	}
	countPlan, err := planner.PlanCount(s.dialect, s.model, q.Conditions)
	if err != nil {
		return resolver.Page{}, err
	}

	var page resolver.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.query(gctx, pagePlan)
		if err != nil {
			return err
		}
		page.Rows = rows
		return nil
	})
	g.Go(func() error {
		count, err := s.count(gctx, countPlan)
		if err != nil {
			return err
		}
		page.Count = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return resolver.Page{}, err
	}
	return page, nil
}

// Create inserts a row and reads it back by its primary key.
func (s *SQLStore) Create(ctx context.Context, fields map[string]any) (resolver.Record, error) {
	columns, err := s.writableColumns(fields, true)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = fields[col]
	}

	plan, err := planner.PlanInsert(s.dialect, s.model, columns, values)
	if err != nil {
		return nil, err
	}

	pk := s.model.PrimaryKey
	var key any
	if s.dialect.Returning {
		rows, err := s.executor.QueryContext(ctx, plan.SQL, plan.Args...)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = rows.Close()
		}()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, err
			}
			return nil, ErrCreatedRowMissing
		}
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		key = convertValue(pk, raw)
	} else {
		result, err := s.executor.ExecContext(ctx, plan.SQL, plan.Args...)
		if err != nil {
			return nil, err
		}
		if value, ok := fields[pk.Name]; ok {
			key = value
		} else {
			lastID, err := result.LastInsertId()
			if err != nil {
				return nil, err
			}
			key = lastID
		}
	}

	record, err := s.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCreatedRowMissing
	}
	return record, nil
}

// UpdateByKey sets fields on the row with the given key and returns the affected row count.
func (s *SQLStore) UpdateByKey(ctx context.Context, key any, fields map[string]any) (int64, error) {
	columns, err := s.writableColumns(fields, false)
	if err != nil {
		return 0, err
	}
	set := make(map[string]any, len(columns))
	for _, col := range columns {
		set[col] = fields[col]
	}

	plan, err := planner.PlanUpdate(s.dialect, s.model, set, key)
	if err != nil {
		return 0, err
	}
	result, err := s.executor.ExecContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// writableColumns validates field names against the model and returns them sorted.
// The primary key is writable only on create.
func (s *SQLStore) writableColumns(fields map[string]any, create bool) ([]string, error) {
	columns := make([]string, 0, len(fields))
	for name := range fields {
		field, ok := s.model.Field(name)
		if !ok || (field.PrimaryKey && !create) {
			return nil, &UnknownColumnError{Entity: s.model.Name, Column: name}
		}
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns, nil
}

func (s *SQLStore) query(ctx context.Context, plan planner.SQLQuery) ([]resolver.Record, error) {
	rows, err := s.executor.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanRows(rows, s.model.Fields)
}

func (s *SQLStore) count(ctx context.Context, plan planner.SQLQuery) (int64, error) {
	rows, err := s.executor.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

func scanRows(rows dbexec.Rows, fields []introspection.CanonicalField) ([]resolver.Record, error) {
	results := []resolver.Record{}
	for rows.Next() {
		values := make([]any, len(fields))
		valuePtrs := make([]any, len(fields))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(resolver.Record, len(fields))
		for i, f := range fields {
			row[f.Name] = convertValue(f, values[i])
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// convertValue turns driver text results into the Go type of the field's scalar.
// Values the driver already typed pass through unchanged.
func convertValue(field introspection.CanonicalField, val any) any {
	b, ok := val.([]byte)
	if !ok {
		if s, isString := val.(string); isString {
			b = []byte(s)
		} else {
			return val
		}
	}
	text := string(b)

	switch field.Type {
	case sqltype.Int:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	case sqltype.Float:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case sqltype.Boolean:
		switch strings.ToLower(text) {
		case "1", "true", "t":
			return true
		case "0", "false", "f":
			return false
		}
	}
	return text
}
