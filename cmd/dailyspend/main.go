package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dailyspend/internal/amqp"
	"dailyspend/internal/backend"
	"dailyspend/internal/cache"
	"dailyspend/internal/cli"
	"dailyspend/internal/config"
	"dailyspend/internal/conversation"
	apphttp "dailyspend/internal/http"
	applog "dailyspend/internal/log"
	"dailyspend/internal/services"
	"dailyspend/internal/telegram"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateBot)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("dailyspend stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("dailyspend stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	at, err := services.ParseDailyTime(cfg.DigestTime)
	if err != nil {
		return err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	store := res.Store

	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sheet mirroring", applog.FieldError, err.Error())
		} else {
			logger.WithComponent(applog.ComponentAMQP).Info("Publishing ledger events",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			publisher = client
		}
	}

	// Closing the ledger closes the store and the publisher.
	ledger := services.NewLedgerService(store, publisher, services.WithLocation(loc))
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close ledger", applog.FieldError, err.Error())
		}
	}()

	sessions := conversation.NewSessionStore(cfg.SessionMaxUsers, cfg.SessionTTL)
	machine := conversation.NewMachine(ledger, store, sessions)

	api, err := telegram.Connect(cfg.BotToken)
	if err != nil {
		return err
	}
	bot := telegram.New(api, machine)
	scheduler := services.NewDigestScheduler(ledger, store, bot, at)

	caches := cache.NewManager()
	caches.Register(sessions)

	srv := apphttp.NewServer(":"+cfg.Port, scheduler, func(ctx context.Context) error {
		_, err := ledger.Snapshot(ctx)
		return err
	}, logger)

	logger.Info("Starting dailyspend",
		"backend", bcfg.Type.String(),
		"port", cfg.Port,
		"digest_time", at.String(),
		"timezone", loc.String(),
		"amqp_enabled", publisher != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return caches.Run(gctx, sessionSweepInterval) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
