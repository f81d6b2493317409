// Package pipeline runs the canonical schema assembly: descriptors are introspected,
// rendered into a schema document, paired with generated handlers and bound into an
// executable schema.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"model-graphql/internal/descriptor"
	"model-graphql/internal/executable"
	"model-graphql/internal/introspection"
	"model-graphql/internal/logging"
	"model-graphql/internal/observability"
	"model-graphql/internal/resolver"
	"model-graphql/internal/schema"
)

// Options defines the inputs of one assembly.
type Options struct {
	Entities []descriptor.Entity
	// CustomFragments are merged over the generated signatures, later fragments winning.
	CustomFragments []schema.Fragment
	// CustomResolvers are merged over the generated handlers, later maps winning.
	CustomResolvers []resolver.Map
	Stores          resolver.StoreFactory
	Metrics         *observability.ResolverMetrics
}

// Result contains the artifacts of a successful assembly.
type Result struct {
	Models    []introspection.ParsedModel
	Document  string
	Resolvers resolver.Map
	Schema    graphql.Schema
}

// Build assembles the schema. Any error aborts the whole assembly and no partial result is returned.
func Build(ctx context.Context, opts Options) (_ *Result, err error) {
	if opts.Stores == nil {
		return nil, fmt.Errorf("schema pipeline requires a store factory")
	}

	ctx, span := otel.Tracer("model-graphql/pipeline").Start(ctx, "schema.build")
	span.SetAttributes(attribute.Int("schema.entities", len(opts.Entities)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	models, err := introspection.IntrospectAll(opts.Entities)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect models: %w", err)
	}

	document := schema.AssembleDocument(models, opts.CustomFragments)

	var buildOpts []resolver.Option
	if opts.Metrics != nil {
		buildOpts = append(buildOpts, resolver.WithMetrics(opts.Metrics))
	}
	generated, err := resolver.Build(models, opts.Stores, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build resolvers: %w", err)
	}
	resolvers := resolver.MergeMaps(generated, opts.CustomResolvers...)

	graphqlSchema, err := executable.Build(document, resolvers)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	logging.FromContext(ctx).Info("schema assembled",
		"entities", len(models),
		"queries", resolvers.Query.Len(),
		"mutations", resolvers.Mutation.Len(),
	)

	return &Result{
		Models:    models,
		Document:  document,
		Resolvers: resolvers,
		Schema:    graphqlSchema,
	}, nil
}

// WriteDocument writes the assembled schema document to w.
func (r *Result) WriteDocument(w io.Writer) error {
	_, err := io.WriteString(w, r.Document)
	return err
}

// ExportDocument writes the schema document to path. The file is replaced atomically.
func (r *Result) ExportDocument(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".schema-*.graphql")
	if err != nil {
		return fmt.Errorf("create temp schema file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if err := r.WriteDocument(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write schema document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close schema document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod schema document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename schema document: %w", err)
	}
	return nil
}
