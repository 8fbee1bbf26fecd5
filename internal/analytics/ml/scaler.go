package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes each feature column to zero mean and unit
// variance (sample standard deviation). A zero-variance column passes through
// centered but unscaled.
type StandardScaler struct {
	mean []float64
	std  []float64
}

// FitScaler computes per-column moments over the given samples. Samples must
// be rectangular and NaN-free.
func FitScaler(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to fit scaler")
	}
	width := len(samples[0])
	if width == 0 {
		return nil, errors.New("samples have no features")
	}

	s := &StandardScaler{
		mean: make([]float64, width),
		std:  make([]float64, width),
	}
	col := make([]float64, len(samples))
	for j := 0; j < width; j++ {
		for i, row := range samples {
			if len(row) != width {
				return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(row), width)
			}
			col[i] = row[j]
		}
		s.mean[j], s.std[j] = stat.MeanStdDev(col, nil)
	}
	return s, nil
}

// Transform returns standardized copies of the samples.
func (s *StandardScaler) Transform(samples [][]float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i, row := range samples {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = v - s.mean[j]
			if s.std[j] > 0 {
				scaled[j] /= s.std[j]
			}
		}
		out[i] = scaled
	}
	return out
}
