package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"petcare/internal/amqp"
	"petcare/internal/cache"
	"petcare/internal/cli"
	"petcare/internal/sheets"
	gsheet "petcare/internal/sheets/google"
	sheetsmem "petcare/internal/sheets/memory"
	"petcare/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateWorkerConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)
	loc := cli.MustLocation(logger, cfg)

	logger.Info("Starting petcare-worker")

	var exporter sheets.ActivityExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewClient(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			Location:        loc,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		exporter = sheetsmem.New(loc)
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided, keeping rows in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(exporter)
	caches := cache.NewManager()
	caches.Register(exportWorker.Cache())
	caches.StartCleanup(time.Hour)

	var metricsSrv *http.Server
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		caches.Stop()
	})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.Consume(gctx, exportWorker.Handlers())
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("consume ledger events: %w", err)
	})

	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("Serving worker metrics", "port", cfg.WorkerMetricsPort)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if cerr := amqpClient.Close(); cerr != nil {
		logger.Warn("AMQP close error", "error", cerr)
	}
	if err != nil {
		logger.Error("Worker stopped with error", "error", err)
		caches.Stop()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
