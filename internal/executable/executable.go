// Package executable turns an assembled schema document and a resolver map into a
// graphql-go schema that can serve requests.
package executable

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"model-graphql/internal/extension"
	"model-graphql/internal/resolver"
	"model-graphql/internal/scalars"
	"model-graphql/internal/schema"
)

const (
	queryTypeName    = "Query"
	mutationTypeName = "Mutation"
)

// MissingResolverError reports a root field declared in the document with no handler in the resolver map.
type MissingResolverError struct {
	Root  string
	Field string
}

func (e *MissingResolverError) Error() string {
	return fmt.Sprintf("no resolver for %s.%s", e.Root, e.Field)
}

// UnknownTypeError reports a type reference the document never declares.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

// builder collects the named types of one document. Object and input fields are
// thunked so types may reference each other in any order.
type builder struct {
	types     map[string]graphql.Type
	order     []string
	roots     map[string]*ast.ObjectDefinition
	resolvers resolver.Map
	errs      []error
}

// Build parses document and binds it to resolvers.
// Every Query and Mutation field must have a handler; extra handlers are ignored.
func Build(document string, resolvers resolver.Map) (graphql.Schema, error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: &source.Source{Body: []byte(document), Name: "schema.graphql"},
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("parse schema document: %w", err)
	}

	b := &builder{
		types: map[string]graphql.Type{
			"String":  graphql.String,
			"Int":     graphql.Int,
			"Float":   graphql.Float,
			"Boolean": graphql.Boolean,
			"ID":      graphql.ID,
		},
		roots:     make(map[string]*ast.ObjectDefinition),
		resolvers: resolvers,
	}
	b.declare(doc)
	if len(b.errs) > 0 {
		return graphql.Schema{}, errors.Join(b.errs...)
	}

	queryDef, ok := b.roots[queryTypeName]
	if !ok {
		return graphql.Schema{}, errors.New("schema document declares no Query type")
	}

	config := graphql.SchemaConfig{
		Query: b.rootObject(queryTypeName, queryDef, resolvers.Query),
	}
	if mutationDef, ok := b.roots[mutationTypeName]; ok {
		config.Mutation = b.rootObject(mutationTypeName, mutationDef, resolvers.Mutation)
	}
	if len(b.errs) > 0 {
		return graphql.Schema{}, errors.Join(b.errs...)
	}
	for _, name := range b.order {
		config.Types = append(config.Types, b.types[name])
	}

	built, err := graphql.NewSchema(config)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build executable schema: %w", err)
	}
	// Thunks run inside NewSchema, so unresolved references surface only now.
	if len(b.errs) > 0 {
		return graphql.Schema{}, errors.Join(b.errs...)
	}
	return built, nil
}

func (b *builder) declare(doc *ast.Document) {
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.ScalarDefinition:
			b.add(d.Name.Value, b.scalar(d.Name.Value))
		case *ast.EnumDefinition:
			values := graphql.EnumValueConfigMap{}
			for _, v := range d.Values {
				values[v.Name.Value] = &graphql.EnumValueConfig{Value: v.Name.Value}
			}
			b.add(d.Name.Value, graphql.NewEnum(graphql.EnumConfig{Name: d.Name.Value, Values: values}))
		case *ast.ObjectDefinition:
			name := d.Name.Value
			if name == queryTypeName || name == mutationTypeName {
				if _, dup := b.roots[name]; dup {
					b.errs = append(b.errs, fmt.Errorf("type %s declared more than once", name))
					continue
				}
				b.roots[name] = d
				continue
			}
			objDef := d
			b.add(name, graphql.NewObject(graphql.ObjectConfig{
				Name: name,
				Fields: (graphql.FieldsThunk)(func() graphql.Fields {
					return b.objectFields(objDef)
				}),
			}))
		case *ast.InputObjectDefinition:
			inputDef := d
			b.add(d.Name.Value, graphql.NewInputObject(graphql.InputObjectConfig{
				Name: d.Name.Value,
				Fields: (graphql.InputObjectConfigFieldMapThunk)(func() graphql.InputObjectConfigFieldMap {
					return b.inputFields(inputDef)
				}),
			}))
		}
	}
}

func (b *builder) add(name string, t graphql.Type) {
	if _, exists := b.types[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("type %s declared more than once", name))
		return
	}
	b.types[name] = t
	b.order = append(b.order, name)
}

// scalar binds the Date codec from the resolver map. Other custom scalars pass values through.
func (b *builder) scalar(name string) *graphql.Scalar {
	if name == schema.DateScalarName {
		if b.resolvers.Date != nil {
			return b.resolvers.Date
		}
		return scalars.Date()
	}
	identity := func(v interface{}) interface{} { return v }
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:       name,
		Serialize:  identity,
		ParseValue: identity,
		ParseLiteral: func(valueAST ast.Value) interface{} {
			return valueAST.GetValue()
		},
	})
}

func (b *builder) rootObject(name string, def *ast.ObjectDefinition, handlers *extension.Table[graphql.FieldResolveFn]) *graphql.Object {
	fields := graphql.Fields{}
	for _, fieldDef := range def.Fields {
		fieldName := fieldDef.Name.Value
		resolve, ok := handlers.Get(fieldName)
		if !ok || resolve == nil {
			b.errs = append(b.errs, &MissingResolverError{Root: name, Field: fieldName})
			continue
		}
		fields[fieldName] = &graphql.Field{
			Type:    b.outputType(fieldDef.Type),
			Args:    b.arguments(fieldDef.Arguments),
			Resolve: resolve,
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func (b *builder) objectFields(def *ast.ObjectDefinition) graphql.Fields {
	fields := graphql.Fields{}
	for _, fieldDef := range def.Fields {
		fields[fieldDef.Name.Value] = &graphql.Field{
			Type: b.outputType(fieldDef.Type),
			Args: b.arguments(fieldDef.Arguments),
		}
	}
	return fields
}

func (b *builder) inputFields(def *ast.InputObjectDefinition) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, fieldDef := range def.Fields {
		if t := b.inputType(fieldDef.Type); t != nil {
			fields[fieldDef.Name.Value] = &graphql.InputObjectFieldConfig{Type: t}
		}
	}
	return fields
}

func (b *builder) arguments(args []*ast.InputValueDefinition) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for _, arg := range args {
		if t := b.inputType(arg.Type); t != nil {
			out[arg.Name.Value] = &graphql.ArgumentConfig{Type: t}
		}
	}
	return out
}

func (b *builder) inputType(t ast.Type) graphql.Input {
	resolved := b.resolveType(t)
	if resolved == nil {
		return nil
	}
	input, ok := resolved.(graphql.Input)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("type %s cannot be used as an input", resolved.Name()))
		return nil
	}
	return input
}

func (b *builder) outputType(t ast.Type) graphql.Output {
	resolved := b.resolveType(t)
	if resolved == nil {
		return graphql.String
	}
	output, ok := resolved.(graphql.Output)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("type %s cannot be used as an output", resolved.Name()))
		return graphql.String
	}
	return output
}

func (b *builder) resolveType(t ast.Type) graphql.Type {
	switch tt := t.(type) {
	case *ast.Named:
		if named, ok := b.types[tt.Name.Value]; ok {
			return named
		}
		b.errs = append(b.errs, &UnknownTypeError{Name: tt.Name.Value})
		return nil
	case *ast.List:
		inner := b.resolveType(tt.Type)
		if inner == nil {
			return nil
		}
		return graphql.NewList(inner)
	case *ast.NonNull:
		inner := b.resolveType(tt.Type)
		if inner == nil {
			return nil
		}
		return graphql.NewNonNull(inner)
	default:
		b.errs = append(b.errs, fmt.Errorf("unsupported type node %T", t))
		return nil
	}
}
