package descriptor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"model-graphql/internal/dbexec"
	"model-graphql/internal/logging"
	"model-graphql/internal/naming"
	"model-graphql/internal/sqltype"
)

// CatalogOptions selects the tables read from a MySQL catalog.
type CatalogOptions struct {
	Database string
	// Tables limits the catalog to the named tables. Empty means every base table.
	Tables []string
	// SkipUnsupported drops columns, and tables keyed by a column, whose type has no
	// scalar mapping. When false such a column fails the load.
	SkipUnsupported bool
}

type catalogColumn struct {
	table         string
	name          string
	dataType      string
	nullable      bool
	defaultValue  sql.NullString
	key           string
	autoIncrement bool
}

// LoadCatalog builds entity descriptors from INFORMATION_SCHEMA.COLUMNS.
// A column whose type has no scalar mapping fails with a *sqltype.UnsupportedTypeError
// unless opts.SkipUnsupported is set. Tables with a composite primary key are skipped
// with a warning.
func LoadCatalog(ctx context.Context, executor dbexec.QueryExecutor, opts CatalogOptions, namer *naming.Namer) ([]Entity, error) {
	if namer == nil {
		namer = naming.Default()
	}
	ctx, span := startSpan(ctx, "descriptor.load_catalog", attribute.String("db.name", opts.Database))
	defer span.End()

	columns, err := readColumns(ctx, executor, opts)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	var entities []Entity
	var current []catalogColumn
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		entity, ok, err := buildEntity(ctx, current, namer, opts.SkipUnsupported)
		current = nil
		if err != nil {
			return err
		}
		if ok {
			entities = append(entities, entity)
		}
		return nil
	}
	for _, col := range columns {
		if len(current) > 0 && current[0].table != col.table {
			if err := flush(); err != nil {
				recordSpanError(span, err)
				return nil, err
			}
		}
		current = append(current, col)
	}
	if err := flush(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("entity.count", len(entities)))
	return entities, nil
}

func readColumns(ctx context.Context, executor dbexec.QueryExecutor, opts CatalogOptions) ([]catalogColumn, error) {
	where := sq.Eq{
		"c.TABLE_SCHEMA": opts.Database,
		"t.TABLE_TYPE":   "BASE TABLE",
	}
	if len(opts.Tables) > 0 {
		where["c.TABLE_NAME"] = opts.Tables
	}
	query, args, err := sq.Select(
		"c.TABLE_NAME",
		"c.COLUMN_NAME",
		"c.DATA_TYPE",
		"c.IS_NULLABLE",
		"c.COLUMN_DEFAULT",
		"c.COLUMN_KEY",
		"c.EXTRA",
	).
		From("INFORMATION_SCHEMA.COLUMNS c").
		Join("INFORMATION_SCHEMA.TABLES t ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME").
		Where(where).
		OrderBy("c.TABLE_NAME", "c.ORDINAL_POSITION").
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog query: %w", err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var columns []catalogColumn
	for rows.Next() {
		var col catalogColumn
		var isNullable, extra string
		if err := rows.Scan(&col.table, &col.name, &col.dataType, &isNullable, &col.defaultValue, &col.key, &extra); err != nil {
			return nil, err
		}
		col.nullable = strings.EqualFold(isNullable, "YES")
		col.autoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

func buildEntity(ctx context.Context, columns []catalogColumn, namer *naming.Namer, skipUnsupported bool) (Entity, bool, error) {
	logger := logging.FromContext(ctx)
	table := columns[0].table
	entity := Entity{
		Name:  namer.EntityName(table),
		Table: table,
	}

	primaryKeys := 0
	for _, col := range columns {
		isPrimary := strings.EqualFold(col.key, "PRI")
		if _, err := sqltype.MapToScalar(col.dataType); err != nil {
			if !skipUnsupported {
				return Entity{}, false, fmt.Errorf("table %q column %q: %w", table, col.name, err)
			}
			if isPrimary {
				logger.Warn("skipping table with unsupported primary key type",
					slog.String("table", table),
					slog.String("column", col.name),
					slog.String("type", col.dataType),
				)
				return Entity{}, false, nil
			}
			logger.Warn("skipping column with unsupported type",
				slog.String("table", table),
				slog.String("column", col.name),
				slog.String("type", col.dataType),
			)
			continue
		}
		attr := Attribute{
			Name:          col.name,
			Type:          col.dataType,
			PrimaryKey:    isPrimary,
			AllowNull:     col.nullable,
			AutoGenerated: col.autoIncrement,
		}
		if col.defaultValue.Valid {
			def := col.defaultValue.String
			attr.Default = &def
		}
		if isPrimary {
			primaryKeys++
		}
		entity.Attributes = append(entity.Attributes, attr)
	}

	if primaryKeys > 1 {
		logger.Warn("skipping table with composite primary key", slog.String("table", table))
		return Entity{}, false, nil
	}
	return entity, true, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("model-graphql/descriptor")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
