// Package anomaly implements the three row-level anomaly detectors and the
// rule that fuses their flags into one verdict.
//
// Detectors are pure functions of (table, resolved features, config): they
// hold no state across calls and never mutate the table. Each returns a
// boolean flag column aligned to the table's row order plus the statistics
// a report needs.
package anomaly

import (
	"errors"
	"fmt"

	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// TargetFeature is the sensor predicted by the residual detector.
const TargetFeature = "TEY"

// DetectionCandidates is the fixed universe of sensors the z-score and
// isolation-forest detectors know how to interpret, in canonical order.
var DetectionCandidates = []string{"TIT", "TAT", "TEY", "CDP", "CO", "NOx"}

// PredictorCandidates are the ambient and compressor sensors conventionally
// used to predict the target feature.
var PredictorCandidates = []string{"AT", "AP", "RH", "CDP"}

// ErrNoUsableFeatures is returned when none of the detection candidates are
// present in the input table. No detector can run; the pipeline must abort.
var ErrNoUsableFeatures = errors.New("no usable sensor columns")

// Features is the resolved view of an input table's schema: which candidate
// sensors are actually present, in candidate order (not table order).
type Features struct {
	// Detection feeds the z-score and isolation-forest detectors.
	Detection []string

	// Predictors feeds the residual detector's regression model.
	Predictors []string

	// HasTarget reports whether the target feature is present.
	HasTarget bool
}

// Resolve intersects the table's columns with the candidate sets. It fails
// only when the detection subset is empty; missing predictors or target
// merely degrade the residual detector.
func Resolve(tbl *dataset.Table) (Features, error) {
	f := Features{
		Detection:  intersect(DetectionCandidates, tbl),
		Predictors: intersect(PredictorCandidates, tbl),
		HasTarget:  tbl.HasColumn(TargetFeature),
	}
	if len(f.Detection) == 0 {
		return Features{}, fmt.Errorf("%w: expected any of %v, table has %v",
			ErrNoUsableFeatures, DetectionCandidates, tbl.Columns())
	}
	return f, nil
}

func intersect(candidates []string, tbl *dataset.Table) []string {
	var out []string
	for _, c := range candidates {
		if tbl.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
