package anomaly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/turbinewatch/turbinewatch/internal/analytics/regression"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// ResidualConfig configures the regression-residual detector.
type ResidualConfig struct {
	// Sigma flags a row when |residual - mean| exceeds Sigma standard
	// deviations of the residual distribution.
	Sigma float64
}

// DefaultResidualConfig uses the three-sigma residual rule.
func DefaultResidualConfig() ResidualConfig {
	return ResidualConfig{Sigma: 3.0}
}

// ResidualResult is the residual detector's output.
type ResidualResult struct {
	// Flags is true where the row's residual is an outlier of the residual
	// distribution. All false when the detector is degraded.
	Flags []bool

	// Predicted and Residuals align to the row index; NaN for rows the model
	// could not score.
	Predicted []float64
	Residuals []float64

	// Mean, Std and Threshold describe the fitted residual distribution and
	// the absolute deviation beyond which rows are flagged.
	Mean      float64
	Std       float64
	Threshold float64

	// Skipped counts rows left unscored for missing predictor or target
	// values; those rows are flagged false.
	Skipped int

	// Degraded is set when the detector could not run at all; Reason says
	// why. A degraded detector is non-fatal: flags are all false and the
	// pipeline proceeds on the remaining detectors.
	Degraded bool
	Reason   string
}

// Residual fits a least-squares model predicting the target feature from the
// resolved predictor features over all complete rows, then flags rows whose
// prediction error is an outlier of the residual distribution. The model is
// scored on the same rows it was fitted on; no held-out split.
func Residual(tbl *dataset.Table, feats Features, cfg ResidualConfig) ResidualResult {
	n := tbl.Len()
	res := ResidualResult{
		Flags:     make([]bool, n),
		Predicted: nanSlice(n),
		Residuals: nanSlice(n),
		Mean:      math.NaN(),
		Std:       math.NaN(),
		Threshold: math.NaN(),
	}

	if !feats.HasTarget {
		return degraded(res, fmt.Sprintf("target feature %s not present", TargetFeature))
	}
	if len(feats.Predictors) == 0 {
		return degraded(res, fmt.Sprintf("no predictor features present (want any of %v)", PredictorCandidates))
	}

	target, _ := tbl.Column(TargetFeature)

	// Fit only over rows with every predictor and the target present.
	var rows [][]float64
	var y []float64
	var rowIdx []int
	for i := 0; i < n; i++ {
		pred := tbl.Row(i, feats.Predictors)
		if dataset.IsMissing(target[i]) || hasMissing(pred) {
			res.Skipped++
			continue
		}
		rows = append(rows, pred)
		y = append(y, target[i])
		rowIdx = append(rowIdx, i)
	}

	model, err := regression.Fit(rows, y)
	if err != nil {
		return degraded(res, fmt.Sprintf("fit regression: %v", err))
	}

	residuals := make([]float64, len(rowIdx))
	for k, i := range rowIdx {
		p := model.Predict(rows[k])
		res.Predicted[i] = p
		res.Residuals[i] = y[k] - p
		residuals[k] = y[k] - p
	}

	res.Mean, res.Std = stat.MeanStdDev(residuals, nil)
	if res.Std == 0 || math.IsNaN(res.Std) {
		// Perfect fit or too few rows: nothing stands out.
		return res
	}
	res.Threshold = cfg.Sigma * res.Std
	for k, i := range rowIdx {
		if math.Abs(residuals[k]-res.Mean) > res.Threshold {
			res.Flags[i] = true
		}
	}
	return res
}

func degraded(res ResidualResult, reason string) ResidualResult {
	res.Degraded = true
	res.Reason = reason
	return res
}

func hasMissing(values []float64) bool {
	for _, v := range values {
		if dataset.IsMissing(v) {
			return true
		}
	}
	return false
}
