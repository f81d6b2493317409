package resolver

import (
	"context"

	"model-graphql/internal/introspection"
	"model-graphql/internal/planner"
)

// Record is one entity row keyed by field name.
type Record = map[string]any

// Query is a filtered, ordered page request.
type Query struct {
	Conditions planner.Conditions
	Order      []planner.OrderClause
	Offset     int
	Limit      int
}

// Page is one page of rows plus the total number of rows matching the conditions.
type Page struct {
	Count int64
	Rows  []Record
}

// Store is the data-access capability generated handlers call for one entity.
type Store interface {
	// FindByKey returns (nil, nil) when no row has the key.
	FindByKey(ctx context.Context, key any) (Record, error)
	FindAndCount(ctx context.Context, q Query) (Page, error)
	// Create returns the stored row, including generated fields.
	Create(ctx context.Context, fields map[string]any) (Record, error)
	// UpdateByKey returns the number of affected rows.
	UpdateByKey(ctx context.Context, key any, fields map[string]any) (int64, error)
}

// StoreFactory returns the store bound to a model.
type StoreFactory func(model introspection.ParsedModel) (Store, error)
