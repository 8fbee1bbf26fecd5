// Package app wires the pipeline together for one batch run: dataset load,
// detection, report writing, and run-history persistence.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbinewatch/turbinewatch/internal/analytics"
	"github.com/turbinewatch/turbinewatch/internal/analytics/anomaly"
	"github.com/turbinewatch/turbinewatch/internal/config"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
	"github.com/turbinewatch/turbinewatch/internal/history"
	"github.com/turbinewatch/turbinewatch/internal/report"
)

// Run executes one full pipeline pass on the configured input and returns
// the run summary. No output files are produced when an error is returned.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*analytics.Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tbl, err := dataset.LoadCSV(cfg.Input.Path, dataset.LoadOptions{
		Rename:         cfg.Input.Rename,
		DropDuplicates: cfg.Input.DropDuplicates,
		ForwardFill:    cfg.Input.ForwardFill,
	})
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	logger.Info("input loaded",
		zap.String("path", cfg.Input.Path),
		zap.Int("rows", tbl.Len()),
		zap.Int("columns", len(tbl.Columns())),
	)

	pipeline := analytics.NewPipeline(detectorConfig(cfg), logger)
	result, err := pipeline.Run(ctx, tbl)
	if err != nil {
		return nil, err
	}

	writer := report.NewWriter(cfg.Report.OutputDir, cfg.Report.Charts, logger)
	artifacts, err := writer.Write(tbl, result)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	logger.Info("artifacts written",
		zap.String("report", artifacts.ReportPath),
		zap.String("tit_chart", artifacts.TITChartPath),
		zap.String("residual_chart", artifacts.ResidualChartPath),
	)

	if cfg.History.Enabled {
		if err := saveHistory(ctx, cfg, result); err != nil {
			// History is a convenience record, not part of the verdict;
			// losing it does not fail the run.
			logger.Warn("failed to persist run history", zap.Error(err))
		}
	}

	return &result.Summary, nil
}

func detectorConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{
		ZScore: anomaly.ZScoreConfig{
			Threshold: cfg.Detectors.ZScore.Threshold,
		},
		IsolationForest: anomaly.IsolationForestConfig{
			Contamination: cfg.Detectors.IsolationForest.Contamination,
			Trees:         cfg.Detectors.IsolationForest.Trees,
			SubSample:     cfg.Detectors.IsolationForest.Subsample,
			Seed:          cfg.Detectors.IsolationForest.Seed,
		},
		Residual: anomaly.ResidualConfig{
			Sigma: cfg.Detectors.Residual.Sigma,
		},
	}
}

func saveHistory(ctx context.Context, cfg *config.Config, result *analytics.Result) error {
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	s := result.Summary
	rec := &history.Record{
		RunID:        s.RunID,
		InputPath:    cfg.Input.Path,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		Rows:         s.Rows,
		Anomalies:    s.Anomalies,
		ZCount:       s.ZCount,
		IsoCount:     s.IsoCount,
		ResCount:     s.ResCount,
		MissingSkips: s.ZSkipped + s.IsoSkipped + s.ResSkipped,
	}
	for _, d := range s.Degraded {
		rec.Degraded = append(rec.Degraded, fmt.Sprintf("%s: %s", d.Detector, d.Reason))
	}
	return store.SaveRun(ctx, rec)
}
