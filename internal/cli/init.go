// Package cli holds the start-up steps shared by cmd/dailyspend and
// cmd/ledger-sync-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dailyspend/internal/config"
	applog "dailyspend/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. Unknown values fall back to info/text.
func SetupLogger(level, format string) *applog.Logger {
	lvl, lvlErr := applog.ParseLevel(level)
	f, fmtErr := applog.ParseFormat(format)

	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	cfg.Format = f
	logger := applog.New(cfg)
	applog.SetDefault(logger)

	if lvlErr != nil {
		logger.Warn("Falling back to info level", applog.FieldError, lvlErr.Error())
	}
	if fmtErr != nil {
		logger.Warn("Falling back to text log format", applog.FieldError, fmtErr.Error())
	}
	return logger
}

// LoadAndValidateConfig loads configuration and runs validate on it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", applog.FieldOperation, applog.OpValidate, applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, or when
// the returned cancel func is called.
func GracefulShutdown(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
