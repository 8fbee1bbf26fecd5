package ml

import (
	"math"
	"testing"
)

func TestStandardScaler_Transform(t *testing.T) {
	samples := [][]float64{
		{2.0, 100.0},
		{4.0, 100.0},
		{6.0, 100.0},
	}

	scaler, err := FitScaler(samples)
	if err != nil {
		t.Fatalf("Failed to fit scaler: %v", err)
	}
	scaled := scaler.Transform(samples)

	// First column: mean 4, sample std 2.
	want := []float64{-1, 0, 1}
	for i := range scaled {
		if math.Abs(scaled[i][0]-want[i]) > 1e-12 {
			t.Errorf("Row %d column 0: got %f, want %f", i, scaled[i][0], want[i])
		}
	}

	// Second column is constant: centered but not scaled.
	for i := range scaled {
		if scaled[i][1] != 0 {
			t.Errorf("Row %d column 1: constant column should center to 0, got %f", i, scaled[i][1])
		}
	}
}

func TestStandardScaler_Empty(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Error("Expected error fitting scaler on no samples")
	}
}
