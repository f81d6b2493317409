package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"model-graphql/internal/logging"
	"model-graphql/internal/observability"
	"model-graphql/internal/planner"
)

func startResolverSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("model-graphql/resolver")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func finishResolverSpan(span trace.Span, err error, outcome string) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("graphql.resolver.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// outcomeFor classifies an error for span attributes and metrics.
func outcomeFor(err error) string {
	var notFound *NotFoundError
	var invalid *InvalidArgumentError
	var malformed *planner.MalformedFilterError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalid), errors.As(err, &malformed):
		return "invalid_input"
	default:
		return "error"
	}
}

// instrument wraps a handler with a span, resolver metrics and a debug log of failures.
func instrument(operation, kind, entity string, metrics *observability.ResolverMetrics, next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (result interface{}, err error) {
		start := time.Now()
		ctx, span := startResolverSpan(p.Context, "graphql.resolver."+kind,
			attribute.String("graphql.field.name", operation),
			attribute.String("model.entity", entity),
		)
		p.Context = ctx
		defer func() {
			outcome := outcomeFor(err)
			finishResolverSpan(span, err, outcome)
			span.End()
			metrics.RecordInvocation(ctx, operation, entity, time.Since(start), outcome)
			if err != nil {
				logging.FromContext(ctx).Debug("resolver failed",
					"operation", operation,
					"outcome", outcome,
					"error", err.Error(),
				)
			}
		}()
		return next(p)
	}
}
