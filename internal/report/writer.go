package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/turbinewatch/turbinewatch/internal/analytics"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// Artifacts lists the files one run produced. Chart paths are empty when the
// corresponding chart was skipped.
type Artifacts struct {
	ReportPath        string
	TITChartPath      string
	ResidualChartPath string
}

// Writer renders all report artifacts for a run into one output directory.
type Writer struct {
	outDir string
	charts bool
	log    *zap.Logger
}

// NewWriter creates a report writer. With charts disabled only the CSV is
// written.
func NewWriter(outDir string, charts bool, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{outDir: outDir, charts: charts, log: logger}
}

// Write persists the augmented table and, when enabled, the two diagnostic
// charts.
func (w *Writer) Write(tbl *dataset.Table, res *analytics.Result) (Artifacts, error) {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir %q: %w", w.outDir, err)
	}

	a := Artifacts{ReportPath: filepath.Join(w.outDir, "anomaly_report.csv")}
	if err := WriteCSV(a.ReportPath, tbl, res); err != nil {
		return Artifacts{}, err
	}
	w.log.Info("report written", zap.String("path", a.ReportPath))

	if !w.charts {
		return a, nil
	}

	titPath := filepath.Join(w.outDir, "tit_anomalies.png")
	wrote, err := WriteTITChart(titPath, tbl, res)
	if err != nil {
		return Artifacts{}, err
	}
	if wrote {
		a.TITChartPath = titPath
	} else {
		w.log.Info("TIT chart skipped, no TIT column")
	}

	histPath := filepath.Join(w.outDir, "residuals.png")
	wrote, err = WriteResidualHistogram(histPath, res)
	if err != nil {
		return Artifacts{}, err
	}
	if wrote {
		a.ResidualChartPath = histPath
	} else {
		w.log.Info("residual histogram skipped, no residuals")
	}
	return a, nil
}
