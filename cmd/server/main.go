package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"model-graphql/internal/config"
	"model-graphql/internal/serverapp"

	"github.com/spf13/pflag"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig parses args and validates the result. It returns (nil, nil) when
// the invocation only asked for help or the version.
func loadConfig(args []string, out io.Writer) (*config.Config, error) {
	fs := config.NewFlagSet("model-graphql")
	fs.SetOutput(out)

	cfg, err := config.Load(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := fs.GetBool("version"); showVersion {
		_, _ = fmt.Fprintf(out, "model-graphql %s (%s)\n", Version, Commit)
		return nil, nil
	}

	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = Version
	}

	if result := cfg.Validate(); !reportValidation(result) {
		return nil, fmt.Errorf("configuration validation failed: %d error(s)", len(result.Errors))
	}
	return cfg, nil
}

// reportValidation logs every warning and error and reports whether startup may continue.
func reportValidation(result *config.ValidationResult) bool {
	for _, w := range result.Warnings {
		slog.Warn("configuration warning", slog.String("field", w.Field), slog.String("message", w.Message), slog.String("hint", w.Hint))
	}
	for _, e := range result.Errors {
		slog.Error("configuration error", slog.String("field", e.Field), slog.String("message", e.Message), slog.String("hint", e.Hint))
	}
	return !result.HasErrors()
}

func run(args []string, out io.Writer) error {
	cfg, err := loadConfig(args, out)
	if err != nil || cfg == nil {
		return err
	}
	return serve(cfg)
}

// serve runs the server until SIGINT/SIGTERM or a server error, then shuts it down.
func serve(cfg *config.Config) error {
	logger, loggerProvider, err := serverapp.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	app, err := serverapp.New(cfg, logger)
	if err != nil {
		if loggerProvider != nil {
			_ = loggerProvider.Shutdown(context.Background(), logger.Logger)
		}
		return err
	}
	app.AttachLoggerProvider(loggerProvider)

	shutdown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return app.Shutdown(ctx)
	}

	// A failed Init has already released everything, the logger provider included.
	if err := app.Init(context.Background()); err != nil {
		return err
	}

	serverErrors, err := app.Start()
	if err != nil {
		_ = shutdown()
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	reason, waitErr := app.WaitForStop(stop, serverErrors)
	logger.Info("shutting down server", slog.String("reason", string(reason)))

	if err := errors.Join(waitErr, shutdown()); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
