package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/turbinewatch/turbinewatch/internal/analytics/ml"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// IsolationForestConfig configures the multivariate outlier detector.
type IsolationForestConfig struct {
	// Contamination is the expected fraction of anomalous rows. The decision
	// boundary is set so that the ceil(Contamination * n) highest-scoring
	// rows are flagged; ties at the boundary are included unless the tie
	// spans every row, which flags nothing.
	Contamination float64

	// Trees is the ensemble size.
	Trees int

	// SubSample caps the number of rows each tree is grown on.
	SubSample int

	// Seed makes fitting deterministic.
	Seed int64
}

// DefaultIsolationForestConfig mirrors the tuning the detector was validated
// with: 2% expected contamination, 200 trees, 256-row subsamples, seed 42.
func DefaultIsolationForestConfig() IsolationForestConfig {
	return IsolationForestConfig{
		Contamination: 0.02,
		Trees:         200,
		SubSample:     256,
		Seed:          42,
	}
}

// IsolationForestResult is the isolation-forest detector's output.
type IsolationForestResult struct {
	// Flags is true for rows at or above the fitted decision boundary.
	Flags []bool

	// Scores holds the per-row anomaly score; NaN for excluded rows.
	Scores []float64

	// Skipped counts rows excluded because every resolved feature was
	// missing. Excluded rows are flagged false by convention.
	Skipped int

	// Imputed counts individual cells filled with the column mean.
	Imputed int
}

// IsolationForest fits a seeded isolation forest over the resolved feature
// subset, treating each row as one multivariate sample, and flags the rows
// whose anomaly score crosses the contamination-quantile boundary.
//
// Missing-value policy: a missing cell is imputed with its column's mean
// (over non-missing values); a row missing every resolved feature is
// excluded from fitting and scoring and flagged false. Inputs are
// standardized before fitting.
func IsolationForest(tbl *dataset.Table, features []string, cfg IsolationForestConfig) (IsolationForestResult, error) {
	n := tbl.Len()
	res := IsolationForestResult{
		Flags:  make([]bool, n),
		Scores: nanSlice(n),
	}

	means := make([]float64, len(features))
	for j, name := range features {
		col, _ := tbl.Column(name)
		means[j], _ = columnMoments(col)
	}

	var samples [][]float64
	var rowIdx []int
	for i := 0; i < n; i++ {
		raw := tbl.Row(i, features)
		missing := 0
		usable := true
		for j, v := range raw {
			if dataset.IsMissing(v) {
				raw[j] = means[j]
				missing++
			}
			// A column with no finite values imputes to NaN; such rows
			// cannot be fitted.
			if dataset.IsMissing(raw[j]) {
				usable = false
			}
		}
		if !usable || missing == len(features) {
			res.Skipped++
			continue
		}
		res.Imputed += missing
		samples = append(samples, raw)
		rowIdx = append(rowIdx, i)
	}
	if len(samples) < 2 {
		// Not enough rows to isolate anything; usable rows stay unscored
		// and unflagged, and Skipped keeps counting only the missing ones.
		return res, nil
	}

	scaler, err := ml.FitScaler(samples)
	if err != nil {
		return res, fmt.Errorf("fit scaler: %w", err)
	}
	scaled := scaler.Transform(samples)

	forest := ml.NewIsolationForest(cfg.Trees, cfg.SubSample, cfg.Seed)
	if err := forest.Fit(scaled); err != nil {
		return res, fmt.Errorf("fit isolation forest: %w", err)
	}
	scores := forest.ScoreAll(scaled)
	for k, i := range rowIdx {
		res.Scores[i] = scores[k]
	}

	boundary, ok := scoreBoundary(scores, cfg.Contamination)
	if !ok {
		return res, nil
	}
	for k, i := range rowIdx {
		if scores[k] >= boundary {
			res.Flags[i] = true
		}
	}
	return res, nil
}

// scoreBoundary returns the score of the k-th highest-scoring sample, where
// k = ceil(contamination * n). Ties at the boundary are all flagged, unless
// the tie reaches the lowest score: then no row stands out and nothing is
// flagged.
func scoreBoundary(scores []float64, contamination float64) (float64, bool) {
	if contamination <= 0 {
		return 0, false
	}
	k := int(math.Ceil(contamination * float64(len(scores))))
	if k < 1 {
		k = 1
	}
	if k > len(scores) {
		k = len(scores)
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	boundary := sorted[k-1]
	if boundary == sorted[len(sorted)-1] {
		// Flagging a tie that spans the whole distribution would mark
		// every row anomalous regardless of contamination.
		return 0, false
	}
	return boundary, true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
