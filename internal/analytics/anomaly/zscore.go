package anomaly

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// ZScoreConfig configures the per-feature standardized-deviation detector.
type ZScoreConfig struct {
	// Threshold flags a value when |z| exceeds it.
	Threshold float64
}

// DefaultZScoreConfig uses the conventional three-sigma rule.
func DefaultZScoreConfig() ZScoreConfig {
	return ZScoreConfig{Threshold: 3.0}
}

// ZScoreResult is the z-score detector's output for one run.
type ZScoreResult struct {
	// Flags is true where any resolved feature deviates past the threshold.
	Flags []bool

	// Skipped counts (row, feature) cells excluded for missing values.
	Skipped int
}

// ZScore flags rows whose value on any resolved feature deviates from that
// feature's mean by more than Threshold sample standard deviations.
//
// Moments use the sample (n-1) standard deviation, computed over non-missing
// values only. A zero-variance feature defines z = 0 for every row and flags
// nothing. A missing cell never flags its row on that feature.
func ZScore(tbl *dataset.Table, features []string, cfg ZScoreConfig) ZScoreResult {
	res := ZScoreResult{Flags: make([]bool, tbl.Len())}

	for _, name := range features {
		col, ok := tbl.Column(name)
		if !ok {
			continue
		}
		mean, std := columnMoments(col)
		if std == 0 || math.IsNaN(std) {
			// Constant feature: z is defined as 0 for all rows.
			continue
		}
		for i, v := range col {
			if dataset.IsMissing(v) {
				res.Skipped++
				continue
			}
			if math.Abs((v-mean)/std) > cfg.Threshold {
				res.Flags[i] = true
			}
		}
	}
	return res
}

// columnMoments computes mean and sample standard deviation over the
// non-missing values of a column.
func columnMoments(col []float64) (mean, std float64) {
	values := make([]float64, 0, len(col))
	for _, v := range col {
		if !dataset.IsMissing(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.MeanStdDev(values, nil)
}
