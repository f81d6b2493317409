// Package dbexec provides the query execution abstraction the stores and catalog loader run SQL through.
package dbexec

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// QueryExecutor abstracts SQL execution so stores can be tested and instrumented independently of *sql.DB.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against the database.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *StandardExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.ExecContext(ctx, query, args...)
}

// TimedExecutor records statement latency for every query and exec it forwards.
type TimedExecutor struct {
	next     QueryExecutor
	duration metric.Float64Histogram
}

// NewTimedExecutor wraps next with a db.statement.duration histogram from the global meter provider.
func NewTimedExecutor(next QueryExecutor) (*TimedExecutor, error) {
	meter := otel.Meter("model-graphql/dbexec")
	duration, err := meter.Float64Histogram(
		"db.statement.duration",
		metric.WithDescription("Duration of SQL statements issued by resolvers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &TimedExecutor{next: next, duration: duration}, nil
}

func (e *TimedExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rows, err := e.next.QueryContext(ctx, query, args...)
	e.record(ctx, "query", start, err)
	return rows, err
}

func (e *TimedExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := e.next.ExecContext(ctx, query, args...)
	e.record(ctx, "exec", start, err)
	return result, err
}

func (e *TimedExecutor) record(ctx context.Context, kind string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("db.statement.kind", kind),
		attribute.String("status", status),
	))
}
