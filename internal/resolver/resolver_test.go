package resolver

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-graphql/internal/descriptor"
	"model-graphql/internal/introspection"
	"model-graphql/internal/planner"
)

// fakeStore keeps rows in memory, keyed by "id".
type fakeStore struct {
	rows       []Record
	nextID     int
	lastQuery  Query
	updates    int
	findErr    error
	updateHook func(key any, fields map[string]any)
}

func (s *fakeStore) find(key any) Record {
	for _, r := range s.rows {
		if r["id"] == key {
			return r
		}
	}
	return nil
}

func (s *fakeStore) FindByKey(_ context.Context, key any) (Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.find(key), nil
}

func (s *fakeStore) FindAndCount(_ context.Context, q Query) (Page, error) {
	s.lastQuery = q
	start := q.Offset
	if start > len(s.rows) {
		start = len(s.rows)
	}
	end := start + q.Limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return Page{Count: int64(len(s.rows)), Rows: s.rows[start:end]}, nil
}

func (s *fakeStore) Create(_ context.Context, fields map[string]any) (Record, error) {
	s.nextID++
	row := Record{"id": s.nextID}
	for k, v := range fields {
		row[k] = v
	}
	s.rows = append(s.rows, row)
	return row, nil
}

func (s *fakeStore) UpdateByKey(_ context.Context, key any, fields map[string]any) (int64, error) {
	s.updates++
	if s.updateHook != nil {
		s.updateHook(key, fields)
	}
	row := s.find(key)
	if row == nil {
		return 0, nil
	}
	for k, v := range fields {
		row[k] = v
	}
	return 1, nil
}

func userModel(t *testing.T) introspection.ParsedModel {
	t.Helper()
	model, err := introspection.Introspect(descriptor.Entity{
		Name: "User",
		Attributes: []descriptor.Attribute{
			descriptor.NewAttribute("name", "STRING"),
			descriptor.NewAttribute("age", "INTEGER"),
		},
	})
	require.NoError(t, err)
	return model
}

func buildWith(t *testing.T, store Store) Map {
	t.Helper()
	m, err := Build([]introspection.ParsedModel{userModel(t)}, func(introspection.ParsedModel) (Store, error) {
		return store, nil
	})
	require.NoError(t, err)
	return m
}

func call(t *testing.T, table interface {
	Get(string) (graphql.FieldResolveFn, bool)
}, name string, args map[string]interface{}) (interface{}, error) {
	t.Helper()
	fn, ok := table.Get(name)
	require.True(t, ok, "missing handler %s", name)
	return fn(graphql.ResolveParams{Context: context.Background(), Args: args})
}

func seededStore(n int) *fakeStore {
	s := &fakeStore{}
	for i := 0; i < n; i++ {
		_, _ = s.Create(context.Background(), map[string]any{"name": "user", "age": i})
	}
	return s
}

func TestBuild_RegistersOperationNames(t *testing.T) {
	m := buildWith(t, &fakeStore{})
	assert.Equal(t, []string{"read_User", "read_multiple_User"}, m.Query.Keys())
	assert.Equal(t, []string{"create_User", "update_User"}, m.Mutation.Keys())
	assert.NotNil(t, m.Date)
}

func TestBuild_StoreFactoryError(t *testing.T) {
	boom := errors.New("no connection")
	_, err := Build([]introspection.ParsedModel{userModel(t)}, func(introspection.ParsedModel) (Store, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRead(t *testing.T) {
	m := buildWith(t, seededStore(2))

	result, err := call(t, m.Query, "read_User", map[string]interface{}{"id": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.(Record)["id"])

	_, err = call(t, m.Query, "read_User", map[string]interface{}{"id": 99})
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "User", notFound.Entity)
	assert.Equal(t, 99, notFound.Key)

	_, err = call(t, m.Query, "read_User", map[string]interface{}{})
	var invalid *InvalidArgumentError
	assert.True(t, errors.As(err, &invalid))
}

func TestRead_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	m := buildWith(t, &fakeStore{findErr: boom})

	_, err := call(t, m.Query, "read_User", map[string]interface{}{"id": 1})
	assert.ErrorIs(t, err, boom)
}

func TestReadMultiple_CountIgnoresLimit(t *testing.T) {
	store := seededStore(25)
	m := buildWith(t, store)

	result, err := call(t, m.Query, "read_multiple_User", map[string]interface{}{"offset": 0, "limit": 10})
	require.NoError(t, err)

	page := result.(map[string]interface{})
	assert.Equal(t, int64(25), page["count"])
	rows := page["rows"].([]Record)
	require.Len(t, rows, 10)
	assert.Equal(t, 1, rows[0]["id"])
	assert.Empty(t, store.lastQuery.Conditions)
	assert.Empty(t, store.lastQuery.Order)
}

func TestReadMultiple_CompilesFiltersAndSort(t *testing.T) {
	store := seededStore(3)
	m := buildWith(t, store)

	_, err := call(t, m.Query, "read_multiple_User", map[string]interface{}{
		"offset": 1,
		"limit":  5,
		"filter_options": []interface{}{
			map[string]interface{}{"value_type": "Int", "column_name": "age", "value": "30"},
			map[string]interface{}{"value_type": "String", "column_name": "name", "value": "Jo"},
		},
		"order_column": "name",
		"order_method": "DESC",
	})
	require.NoError(t, err)

	q := store.lastQuery
	assert.Equal(t, 1, q.Offset)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, planner.Conditions{
		{Column: "age", Op: planner.OpEqual, Values: []any{int64(30)}},
		{Column: "name", Op: planner.OpLike, Values: []any{"%Jo%"}},
	}, q.Conditions)
	assert.Equal(t, []planner.OrderClause{{Column: "name", Direction: "DESC"}}, q.Order)
}

func TestReadMultiple_SortNeedsBothParts(t *testing.T) {
	store := seededStore(1)
	m := buildWith(t, store)

	_, err := call(t, m.Query, "read_multiple_User", map[string]interface{}{"offset": 0, "limit": 5, "order_column": "name"})
	require.NoError(t, err)
	assert.Empty(t, store.lastQuery.Order)
}

func TestReadMultiple_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		as   any
	}{
		{"negative offset", map[string]interface{}{"offset": -1, "limit": 5}, new(*InvalidArgumentError)},
		{"negative limit", map[string]interface{}{"offset": 0, "limit": -5}, new(*InvalidArgumentError)},
		{"missing limit", map[string]interface{}{"offset": 0}, new(*InvalidArgumentError)},
		{
			"malformed filter",
			map[string]interface{}{"offset": 0, "limit": 5, "filter_options": []interface{}{
				map[string]interface{}{"value_type": "Int", "column_name": "age", "value": "abc"},
			}},
			new(*planner.MalformedFilterError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildWith(t, seededStore(1))
			_, err := call(t, m.Query, "read_multiple_User", tt.args)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.as))
		})
	}
}

func TestCreate(t *testing.T) {
	store := &fakeStore{}
	m := buildWith(t, store)

	result, err := call(t, m.Mutation, "create_User", map[string]interface{}{"name": "Jo", "age": 30})
	require.NoError(t, err)

	record := result.(Record)
	assert.Equal(t, 1, record["id"])
	assert.Equal(t, "Jo", record["name"])
	assert.Len(t, store.rows, 1)
}

func TestUpdate_ReturnsPostUpdateState(t *testing.T) {
	store := seededStore(1)
	var gotFields map[string]any
	store.updateHook = func(_ any, fields map[string]any) { gotFields = fields }
	m := buildWith(t, store)

	result, err := call(t, m.Mutation, "update_User", map[string]interface{}{"id": 1, "name": "Renamed"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Renamed"}, gotFields, "primary key is not part of the update set")
	record := result.(Record)
	assert.Equal(t, "Renamed", record["name"])
	assert.Equal(t, 0, record["age"])
}

func TestUpdate_NoFieldsSkipsStoreUpdate(t *testing.T) {
	store := seededStore(1)
	m := buildWith(t, store)

	result, err := call(t, m.Mutation, "update_User", map[string]interface{}{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, 0, store.updates)
	assert.Equal(t, 1, result.(Record)["id"])
}

func TestUpdate_Errors(t *testing.T) {
	m := buildWith(t, seededStore(1))

	_, err := call(t, m.Mutation, "update_User", map[string]interface{}{"name": "x"})
	var invalid *InvalidArgumentError
	assert.True(t, errors.As(err, &invalid))

	_, err = call(t, m.Mutation, "update_User", map[string]interface{}{"id": 42, "name": "x"})
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestMergeMaps_CustomOverrides(t *testing.T) {
	generated := buildWith(t, seededStore(1))

	custom := NewMap()
	custom.Date = nil
	custom.Query.Set("read_User", func(graphql.ResolveParams) (interface{}, error) { return "custom-read", nil })
	custom.Query.Set("stats", func(graphql.ResolveParams) (interface{}, error) { return 1, nil })
	custom.Mutation.Set("update_User", func(graphql.ResolveParams) (interface{}, error) { return "custom-update", nil })

	merged := MergeMaps(generated, custom)

	assert.Equal(t, []string{"read_User", "read_multiple_User", "stats"}, merged.Query.Keys())
	assert.Equal(t, []string{"create_User", "update_User"}, merged.Mutation.Keys())
	assert.Same(t, generated.Date, merged.Date, "a nil custom codec keeps the generated one")

	result, err := call(t, merged.Query, "read_User", map[string]interface{}{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "custom-read", result)

	result, err = call(t, merged.Mutation, "update_User", map[string]interface{}{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "custom-update", result)

	keys := generated.Query.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"read_User", "read_multiple_User"}, keys, "generated map is not modified")
}

func TestMergeMaps_CustomDateCodec(t *testing.T) {
	generated := buildWith(t, seededStore(1))
	custom := Map{Date: graphql.NewScalar(graphql.ScalarConfig{
		Name:      "Date",
		Serialize: func(v interface{}) interface{} { return v },
	})}

	merged := MergeMaps(generated, custom)
	assert.Same(t, custom.Date, merged.Date)
	assert.Equal(t, 2, merged.Query.Len())
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, "success", outcomeFor(nil))
	assert.Equal(t, "not_found", outcomeFor(&NotFoundError{Entity: "User", Key: 1}))
	assert.Equal(t, "invalid_input", outcomeFor(&InvalidArgumentError{Argument: "limit"}))
	assert.Equal(t, "invalid_input", outcomeFor(&planner.MalformedFilterError{}))
	assert.Equal(t, "error", outcomeFor(errors.New("boom")))
}
