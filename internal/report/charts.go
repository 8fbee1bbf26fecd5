package report

import (
	"fmt"
	"io"
	"math"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/turbinewatch/turbinewatch/internal/analytics"
	"github.com/turbinewatch/turbinewatch/internal/dataset"
)

// histogramBins is the number of buckets in the residual distribution chart.
const histogramBins = 40

// WriteTITChart renders the TIT sensor over the row index with anomalous
// rows marked as red dots. Returns (false, nil) without writing when TIT is
// not present in the table.
func WriteTITChart(path string, tbl *dataset.Table, res *analytics.Result) (bool, error) {
	col, ok := tbl.Column("TIT")
	if !ok {
		return false, nil
	}

	var xs, ys []float64
	for i, v := range col {
		if dataset.IsMissing(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(xs) == 0 {
		return false, nil
	}
	if len(xs) == 1 {
		// go-chart needs at least two X values.
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "TIT",
			XValues: xs,
			YValues: ys,
		},
	}

	var axs, ays []float64
	for i, flagged := range res.Anomaly {
		if !flagged || dataset.IsMissing(col[i]) {
			continue
		}
		axs = append(axs, float64(i))
		ays = append(ays, col[i])
	}
	if len(axs) > 0 {
		if len(axs) == 1 {
			axs = append(axs, axs[0])
			ays = append(ays, ays[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Anomaly",
			XValues: axs,
			YValues: ays,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    chart.ColorRed,
			},
		})
	}

	ch := chart.Chart{
		Title:      "Turbine Inlet Temperature with Anomalies",
		Width:      1000,
		Height:     400,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "row"},
		YAxis:      chart.YAxis{Name: "TIT"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return true, renderPNG(path, ch.Render)
}

// WriteResidualHistogram renders the distribution of the residual detector's
// prediction errors. Returns (false, nil) without writing when the residual
// detector was degraded or produced fewer than two residuals.
func WriteResidualHistogram(path string, res *analytics.Result) (bool, error) {
	var values []float64
	for _, r := range res.Residuals {
		if !math.IsNaN(r) {
			values = append(values, r)
		}
	}
	if len(values) < 2 {
		return false, nil
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	width := (maxV - minV) / float64(histogramBins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, histogramBins)
	for _, v := range values {
		b := int((v - minV) / width)
		if b >= histogramBins {
			b = histogramBins - 1
		}
		counts[b]++
	}

	bars := make([]chart.Value, histogramBins)
	for b, c := range counts {
		center := minV + (float64(b)+0.5)*width
		label := ""
		if b%8 == 0 {
			label = fmt.Sprintf("%.1f", center)
		}
		style := chart.Style{}
		// Mark buckets past the flag threshold.
		if !math.IsNaN(res.ResidualThreshold) &&
			math.Abs(center-res.ResidualMean) > res.ResidualThreshold {
			style.FillColor = drawing.ColorRed
			style.StrokeColor = drawing.ColorRed
		}
		bars[b] = chart.Value{Value: float64(c), Label: label, Style: style}
	}

	ch := chart.BarChart{
		Title:      "Residual Distribution: TEY - Predicted TEY",
		Width:      800,
		Height:     400,
		BarWidth:   14,
		BarSpacing: 2,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}

	return true, renderPNG(path, ch.Render)
}

func renderPNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %q: %w", path, err)
	}
	defer f.Close()
	if err := render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart %q: %w", path, err)
	}
	return nil
}
