package serverapp

import (
	"context"
	"fmt"
	"log/slog"

	"model-graphql/internal/dbexec"
	"model-graphql/internal/descriptor"
	"model-graphql/internal/pipeline"
	"model-graphql/internal/planner"
	"model-graphql/internal/store"
)

// Init initializes all runtime resources. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	cleanup := cleanupStack{}
	success := false
	defer func() {
		if !success {
			_ = cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return a.loggerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	meterProvider, resolverMetrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	dialect, err := planner.DialectFor(a.cfg.Database.DriverName())
	if err != nil {
		return err
	}

	a.logger.Info("connecting to database", slog.String("driver", dialect.Name))

	db, dbStatsReg, err := connectDB(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup.push("database", func(_ context.Context) error {
		if dbStatsReg != nil {
			if err := dbStatsReg.Unregister(); err != nil {
				a.logger.Warn("failed to unregister DB stats metrics", slog.String("error", err.Error()))
			}
		}
		return db.Close()
	})

	if err := configureDatabase(ctx, a.cfg, a.logger, db); err != nil {
		return fmt.Errorf("failed to verify database connection: %w", err)
	}

	executor, err := dbexec.NewTimedExecutor(dbexec.NewStandardExecutor(db))
	if err != nil {
		return fmt.Errorf("failed to initialize query executor: %w", err)
	}

	entities, err := loadEntities(ctx, a.cfg, executor)
	if err != nil {
		return fmt.Errorf("failed to load model descriptors: %w", err)
	}
	a.logger.Info("model descriptors loaded",
		slog.String("source", a.cfg.Models.Source),
		slog.Any("entities", descriptor.Names(entities)),
	)

	result, err := pipeline.Build(ctx, pipeline.Options{
		Entities: entities,
		Stores:   store.Factory(executor, dialect),
		Metrics:  resolverMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble schema: %w", err)
	}

	if path := a.cfg.Server.ExportSchemaPath; path != "" {
		if err := result.ExportDocument(path); err != nil {
			return fmt.Errorf("failed to export schema document: %w", err)
		}
		a.logger.Info("schema document exported", slog.String("path", path))
	}

	graphqlHandler := buildGraphQLHandler(a.cfg, result)
	mux := buildRouter(a.cfg, a.logger, db, result, graphqlHandler, meterProvider)
	handler := wrapHTTPHandler(a.cfg, a.logger, mux)

	serverAddr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := buildServer(a.cfg, handler, serverAddr)
	cleanup.push("HTTP server", func(shutdownCtx context.Context) error {
		return srv.Shutdown(shutdownCtx)
	})

	a.stateMu.Lock()
	a.meterProvider = meterProvider
	a.resolverMetrics = resolverMetrics
	a.tracerProvider = tracerProvider
	a.db = db
	a.dbStatsReg = dbStatsReg
	a.executor = executor
	a.result = result
	a.mux = mux
	a.handler = handler
	a.serverAddr = serverAddr
	a.srv = srv
	a.cleanup = cleanup
	a.initialized = true
	a.stateMu.Unlock()

	success = true
	return nil
}
