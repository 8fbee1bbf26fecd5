// Package analytics orchestrates one batch anomaly-detection run over an
// observation table: resolve the usable sensor columns, run the three
// detectors independently, fuse their flags into the final verdict, and
// collect a run summary.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbinewatch/turbinewatch/internal/analytics/anomaly"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// Config bundles the per-detector configuration for one run.
type Config struct {
	ZScore          anomaly.ZScoreConfig
	IsolationForest anomaly.IsolationForestConfig
	Residual        anomaly.ResidualConfig
}

// DefaultConfig returns the documented detector defaults.
func DefaultConfig() Config {
	return Config{
		ZScore:          anomaly.DefaultZScoreConfig(),
		IsolationForest: anomaly.DefaultIsolationForestConfig(),
		Residual:        anomaly.DefaultResidualConfig(),
	}
}

// DegradedDetector records a detector that could not run; its flags default
// to all false and the run completes on the remaining detectors.
type DegradedDetector struct {
	Detector string
	Reason   string
}

// Summary describes one completed run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Rows      int
	Features  []string
	ZCount    int
	IsoCount  int
	ResCount  int
	Anomalies int

	// Missing-value skips, per detector (countable, non-fatal).
	ZSkipped   int
	IsoSkipped int
	ResSkipped int

	Degraded []DegradedDetector
}

// Result carries the flag columns and detector statistics for one run, all
// aligned to the table's row order.
type Result struct {
	Features anomaly.Features

	ZFlags   []bool
	IsoFlags []bool
	ResFlags []bool
	Anomaly  []bool

	IsoScores []float64
	Predicted []float64
	Residuals []float64

	// ResidualThreshold is the absolute deviation beyond which residuals
	// were flagged; NaN when the residual detector was degraded.
	ResidualMean      float64
	ResidualThreshold float64

	Summary Summary
}

// Pipeline runs the detection stages over one table. It holds no state
// between runs; every Run fits fresh models.
type Pipeline struct {
	cfg Config
	log *zap.Logger
}

// NewPipeline creates a pipeline with the given detector configuration.
func NewPipeline(cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: logger}
}

// Run executes one batch detection pass. The table is treated as read-only;
// row order is preserved end to end. A nil error means the run completed,
// possibly with degraded detectors recorded in the summary.
func (p *Pipeline) Run(ctx context.Context, tbl *dataset.Table) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	feats, err := anomaly.Resolve(tbl)
	if err != nil {
		return nil, err
	}
	p.log.Info("resolved sensor columns",
		zap.Strings("detection", feats.Detection),
		zap.Strings("predictors", feats.Predictors),
		zap.Bool("target_present", feats.HasTarget),
	)

	z := anomaly.ZScore(tbl, feats.Detection, p.cfg.ZScore)

	iso, err := anomaly.IsolationForest(tbl, feats.Detection, p.cfg.IsolationForest)
	if err != nil {
		return nil, fmt.Errorf("isolation forest detector: %w", err)
	}

	res := anomaly.Residual(tbl, feats, p.cfg.Residual)

	result := &Result{
		Features:          feats,
		ZFlags:            z.Flags,
		IsoFlags:          iso.Flags,
		ResFlags:          res.Flags,
		Anomaly:           anomaly.Fuse(z.Flags, iso.Flags, res.Flags),
		IsoScores:         iso.Scores,
		Predicted:         res.Predicted,
		Residuals:         res.Residuals,
		ResidualMean:      res.Mean,
		ResidualThreshold: res.Threshold,
	}

	s := Summary{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Rows:       tbl.Len(),
		Features:   feats.Detection,
		ZCount:     countTrue(z.Flags),
		IsoCount:   countTrue(iso.Flags),
		ResCount:   countTrue(res.Flags),
		Anomalies:  countTrue(result.Anomaly),
		ZSkipped:   z.Skipped,
		IsoSkipped: iso.Skipped,
		ResSkipped: res.Skipped,
	}
	if res.Degraded {
		s.Degraded = append(s.Degraded, DegradedDetector{Detector: "residual", Reason: res.Reason})
		p.log.Warn("residual detector degraded, flags default to false",
			zap.String("reason", res.Reason))
	}
	result.Summary = s

	p.log.Info("detection run complete",
		zap.String("run_id", s.RunID),
		zap.Int("rows", s.Rows),
		zap.Int("anomalies", s.Anomalies),
		zap.Int("z_flags", s.ZCount),
		zap.Int("iso_flags", s.IsoCount),
		zap.Int("res_flags", s.ResCount),
		zap.Int("missing_value_skips", s.ZSkipped+s.IsoSkipped+s.ResSkipped),
		zap.Duration("elapsed", s.FinishedAt.Sub(s.StartedAt)),
	)
	return result, nil
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
