package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dailyspend/internal/amqp"
	"dailyspend/internal/cli"
	"dailyspend/internal/config"
	"dailyspend/internal/core"
	applog "dailyspend/internal/log"
	gsheet "dailyspend/internal/sheets/google"
	"dailyspend/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("ledger-sync-worker stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting ledger-sync-worker")

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()

	sheetsClient, err := gsheet.New(initCtx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}
	logger.WithComponent(applog.ComponentSheets).Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sheetsClient)

	// A missing header is repaired now; other sheet errors surface again on
	// the first append.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupCheck(initCtx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldOperation, applog.OpStartup, applog.FieldError, err.Error())
	} else if _, err := syncWorker.MonthSummary(initCtx, core.MonthKey(time.Now())); err != nil {
		logger.Warn("Could not read mirrored events", applog.FieldError, err.Error())
	}

	err = amqpClient.ConsumeLedgerEvents(ctx, syncWorker.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
