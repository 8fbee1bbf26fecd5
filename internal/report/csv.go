// Package report persists the outcome of a detection run: the augmented
// observation table as CSV and two diagnostic charts. It is the only
// component that writes to disk and always runs last; it never reorders the
// table's rows.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/turbinewatch/turbinewatch/internal/analytics"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// WriteCSV writes the original columns followed by the three detector flag
// columns and the fused verdict, plus the predicted target and residual when
// the residual detector ran. Flags are written as 0/1; missing values as
// empty cells.
func WriteCSV(path string, tbl *dataset.Table, res *analytics.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	withResidual := !residualDegraded(res)
	header := append([]string{}, tbl.Columns()...)
	header = append(header, "z_flag", "iso_flag", "res_flag", "anomaly")
	if withResidual {
		header = append(header, "TEY_pred", "residual")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	columns := tbl.Columns()
	for i := 0; i < tbl.Len(); i++ {
		rec := make([]string, 0, len(header))
		for _, c := range columns {
			rec = append(rec, formatCell(tbl.Value(i, c)))
		}
		rec = append(rec,
			formatFlag(res.ZFlags[i]),
			formatFlag(res.IsoFlags[i]),
			formatFlag(res.ResFlags[i]),
			formatFlag(res.Anomaly[i]),
		)
		if withResidual {
			rec = append(rec, formatCell(res.Predicted[i]), formatCell(res.Residuals[i]))
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write report row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func residualDegraded(res *analytics.Result) bool {
	for _, d := range res.Summary.Degraded {
		if d.Detector == "residual" {
			return true
		}
	}
	return false
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
