package main

// Package main is the entry point for the turbinewatch batch pipeline.
//
// Responsibilities:
//   - Load and validate configuration from YAML and environment variables
//   - Ingest the configured sensor CSV into the in-memory observation table
//   - Run the three detectors and fuse their flags into the final verdict
//   - Write the anomaly report CSV and the two diagnostic charts
//   - Persist the run summary to the history database
//
// Execution Flow:
//   1. CSV file → observation table (clean: rename, dedupe, forward fill)
//   2. Table → feature resolution → z-score + isolation forest + residual
//   3. Three flag columns → OR fusion → anomaly column
//   4. Table + flags → report writer (CSV + charts), history store
//
// The run is strictly batch: all rows are in memory before any detector
// runs, and the process exits when the report is written. A fatal error
// (unreadable input, no usable sensor columns) aborts with no output files.

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/turbinewatch/turbinewatch/internal/app"
	"github.com/turbinewatch/turbinewatch/internal/config"
	"github.com/turbinewatch/turbinewatch/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to turbinewatch.yaml (optional)")
	flag.Parse()

	ctx := context.Background()

	mgr := config.NewManager(*configPath)
	if err := mgr.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.Validate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := mgr.Get(ctx)

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	summary, err := app.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("done",
		zap.String("run_id", summary.RunID),
		zap.Int("rows", summary.Rows),
		zap.Int("anomalies", summary.Anomalies),
	)
}
