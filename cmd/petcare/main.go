package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"petcare/internal/amqp"
	"petcare/internal/backend"
	"petcare/internal/cache"
	"petcare/internal/cli"
	apphttp "petcare/internal/http"
	applog "petcare/internal/log"
	"petcare/internal/services"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)
	loc := cli.MustLocation(logger, cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create ledger backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The publisher stays a nil interface when AMQP is not configured.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events will not be published", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	cutoff := cfg.WalkCutoffHour
	api, err := services.NewActivityService(store.Store, services.Options{
		Location:        loc,
		CutoffHour:      &cutoff,
		WalkGoalMinutes: cfg.WalkGoalMinutes,
		Publisher:       publisher,
	})
	if err != nil {
		logger.Error("Failed to create activity service", "error", err)
		os.Exit(1)
	}

	reminder := services.NewWalkReminder(api, publisher, cfg.WalkReminderSchedule)
	if err := reminder.Start(); err != nil {
		logger.Error("Failed to start walk reminder", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, api, apphttp.ServerOptions{
		AllowedOrigin:      cfg.CORSAllowedOrigin,
		Production:         cfg.IsProduction(),
		RateLimitPerMinute: cfg.RateLimitPerMin,
		Logger:             applog.New(applog.Config{Handler: logger.Handler(), Component: "http"}),
	})

	caches := cache.NewManager()
	caches.Register(srv.SummaryCache())
	caches.StartCleanup(5 * time.Minute)

	cleanup := func() {
		reminder.Stop()
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, cleanup)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting petcare server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", loc.String(),
			"cutoff_hour", cfg.WalkCutoffHour)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
