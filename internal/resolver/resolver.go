// Package resolver synthesizes the GraphQL handlers for parsed models and merges
// them with caller-supplied resolver maps.
package resolver

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"model-graphql/internal/extension"
	"model-graphql/internal/introspection"
	"model-graphql/internal/naming"
	"model-graphql/internal/observability"
	"model-graphql/internal/planner"
	"model-graphql/internal/scalars"
)

// Map is the resolver map consumed by the executable schema: the temporal scalar codec
// plus name-to-handler tables for the Query and Mutation root types.
type Map struct {
	Date     *graphql.Scalar
	Query    *extension.Table[graphql.FieldResolveFn]
	Mutation *extension.Table[graphql.FieldResolveFn]
}

// NewMap returns an empty map with the default Date codec.
func NewMap() Map {
	return Map{
		Date:     scalars.Date(),
		Query:    extension.NewTable[graphql.FieldResolveFn](),
		Mutation: extension.NewTable[graphql.FieldResolveFn](),
	}
}

// MergeMaps layers custom maps over the generated one. Custom handlers replace generated
// handlers of the same name; a non-nil custom Date codec replaces the generated codec.
func MergeMaps(generated Map, custom ...Map) Map {
	queries := make([]*extension.Table[graphql.FieldResolveFn], 0, len(custom))
	mutations := make([]*extension.Table[graphql.FieldResolveFn], 0, len(custom))
	date := generated.Date
	for _, c := range custom {
		queries = append(queries, c.Query)
		mutations = append(mutations, c.Mutation)
		if c.Date != nil {
			date = c.Date
		}
	}
	return Map{
		Date:     date,
		Query:    extension.Merge(generated.Query, queries...),
		Mutation: extension.Merge(generated.Mutation, mutations...),
	}
}

type buildOptions struct {
	metrics *observability.ResolverMetrics
}

// Option configures Build.
type Option func(*buildOptions)

// WithMetrics records resolver invocations on m.
func WithMetrics(m *observability.ResolverMetrics) Option {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

// Build creates the four handlers of every model, bound to the store the factory returns for it.
func Build(models []introspection.ParsedModel, stores StoreFactory, opts ...Option) (Map, error) {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	out := NewMap()
	for _, model := range models {
		store, err := stores(model)
		if err != nil {
			return Map{}, fmt.Errorf("failed to create store for %s: %w", model.Name, err)
		}
		h := &entityHandlers{model: model, store: store, metrics: options.metrics}

		out.Query.Set(naming.ReadOne(model.Name), instrument(naming.ReadOne(model.Name), "read", model.Name, options.metrics, h.read))
		out.Query.Set(naming.ReadMultiple(model.Name), instrument(naming.ReadMultiple(model.Name), "read_multiple", model.Name, options.metrics, h.readMultiple))
		out.Mutation.Set(naming.Create(model.Name), instrument(naming.Create(model.Name), "create", model.Name, options.metrics, h.create))
		out.Mutation.Set(naming.Update(model.Name), instrument(naming.Update(model.Name), "update", model.Name, options.metrics, h.update))
	}
	return out, nil
}

type entityHandlers struct {
	model   introspection.ParsedModel
	store   Store
	metrics *observability.ResolverMetrics
}

func (h *entityHandlers) read(p graphql.ResolveParams) (interface{}, error) {
	key, ok := p.Args[h.model.PrimaryKey.Name]
	if !ok || key == nil {
		return nil, &InvalidArgumentError{Argument: h.model.PrimaryKey.Name, Reason: "primary key is required"}
	}

	record, err := h.store.FindByKey(p.Context, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", naming.ReadOne(h.model.Name), err)
	}
	if record == nil {
		return nil, &NotFoundError{Entity: h.model.Name, Key: key}
	}
	return record, nil
}

func (h *entityHandlers) readMultiple(p graphql.ResolveParams) (interface{}, error) {
	offset, err := nonNegativeIntArg(p.Args, "offset")
	if err != nil {
		return nil, err
	}
	limit, err := nonNegativeIntArg(p.Args, "limit")
	if err != nil {
		return nil, err
	}

	filters, err := planner.DecodeFilters(p.Args["filter_options"])
	if err != nil {
		h.metrics.RecordFilterError(p.Context, h.model.Name)
		return nil, err
	}
	conditions, err := planner.Compile(filters)
	if err != nil {
		var malformed *planner.MalformedFilterError
		if errors.As(err, &malformed) {
			h.metrics.RecordFilterError(p.Context, h.model.Name)
		}
		return nil, err
	}

	order := planner.CompileOrder(planner.SortDirective{
		Column:    optionalStringArg(p.Args, "order_column"),
		Direction: optionalStringArg(p.Args, "order_method"),
	})

	page, err := h.store.FindAndCount(p.Context, Query{
		Conditions: conditions,
		Order:      order,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", naming.ReadMultiple(h.model.Name), err)
	}

	rows := page.Rows
	if rows == nil {
		rows = []Record{}
	}
	h.metrics.RecordRows(p.Context, h.model.Name, len(rows))
	return map[string]interface{}{
		"count": page.Count,
		"rows":  rows,
	}, nil
}

func (h *entityHandlers) create(p graphql.ResolveParams) (interface{}, error) {
	fields := make(map[string]any, len(p.Args))
	for name, value := range p.Args {
		fields[name] = value
	}

	record, err := h.store.Create(p.Context, fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", naming.Create(h.model.Name), err)
	}
	return record, nil
}

func (h *entityHandlers) update(p graphql.ResolveParams) (interface{}, error) {
	pkName := h.model.PrimaryKey.Name
	key, ok := p.Args[pkName]
	if !ok || key == nil {
		return nil, &InvalidArgumentError{Argument: pkName, Reason: "primary key is required"}
	}

	fields := make(map[string]any, len(p.Args))
	for name, value := range p.Args {
		if name != pkName {
			fields[name] = value
		}
	}

	if len(fields) > 0 {
		if _, err := h.store.UpdateByKey(p.Context, key, fields); err != nil {
			return nil, fmt.Errorf("%s: %w", naming.Update(h.model.Name), err)
		}
	}

	// The store reports only an affected-row count, so re-read the current state.
	record, err := h.store.FindByKey(p.Context, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", naming.Update(h.model.Name), err)
	}
	if record == nil {
		return nil, &NotFoundError{Entity: h.model.Name, Key: key}
	}
	return record, nil
}

func nonNegativeIntArg(args map[string]interface{}, name string) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, &InvalidArgumentError{Argument: name, Reason: "value is required"}
	}
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return 0, &InvalidArgumentError{Argument: name, Reason: fmt.Sprintf("expected an integer, got %T", raw)}
	}
	if n < 0 {
		return 0, &InvalidArgumentError{Argument: name, Reason: "must be zero or greater"}
	}
	return n, nil
}

func optionalStringArg(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}
