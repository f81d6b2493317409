package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ResolverMetrics holds the metrics recorded by generated resolvers.
type ResolverMetrics struct {
	invocations  metric.Int64Counter
	duration     metric.Float64Histogram
	rowsReturned metric.Int64Histogram
	filterErrors metric.Int64Counter
}

// InitResolverMetrics creates the resolver instruments from the global meter provider.
func InitResolverMetrics() (*ResolverMetrics, error) {
	meter := otel.Meter("model-graphql")

	invocations, err := meter.Int64Counter(
		"graphql.resolver.invocations",
		metric.WithDescription("Total number of generated resolver invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver invocation counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"graphql.resolver.duration",
		metric.WithDescription("Duration of generated resolver invocations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver duration histogram: %w", err)
	}

	rowsReturned, err := meter.Int64Histogram(
		"graphql.resolver.rows",
		metric.WithDescription("Number of rows returned by read-many resolvers"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver rows histogram: %w", err)
	}

	filterErrors, err := meter.Int64Counter(
		"graphql.filter.errors",
		metric.WithDescription("Number of filter_options rejected as malformed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter error counter: %w", err)
	}

	return &ResolverMetrics{
		invocations:  invocations,
		duration:     duration,
		rowsReturned: rowsReturned,
		filterErrors: filterErrors,
	}, nil
}

// RecordInvocation records one resolver call with its duration and outcome.
// A nil receiver records nothing.
func (m *ResolverMetrics) RecordInvocation(ctx context.Context, operation, entity string, duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("entity", entity),
		attribute.String("outcome", outcome),
	)
	m.invocations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordRows records the page size returned by a read-many resolver.
func (m *ResolverMetrics) RecordRows(ctx context.Context, entity string, rows int) {
	if m == nil {
		return
	}
	m.rowsReturned.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("entity", entity)))
}

// RecordFilterError counts a malformed filter_options argument.
func (m *ResolverMetrics) RecordFilterError(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	m.filterErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
}
