// Package regression provides ordinary least squares fitting for the
// target-expectation model used by the residual detector.
package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Model is a fitted linear model y = intercept + coef · x.
type Model struct {
	Intercept float64
	Coef      []float64
}

// Fit solves the least-squares problem over the given predictor rows and
// target values. Rows must be rectangular and NaN-free; callers filter
// incomplete observations first.
func Fit(rows [][]float64, target []float64) (*Model, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("no observations to fit")
	}
	if n != len(target) {
		return nil, fmt.Errorf("have %d predictor rows but %d target values", n, len(target))
	}
	p := len(rows[0])
	if p == 0 {
		return nil, errors.New("no predictor features")
	}
	if n < p+1 {
		return nil, fmt.Errorf("need at least %d observations to fit %d predictors, have %d", p+1, p, n)
	}

	// Design matrix with a leading intercept column.
	x := mat.NewDense(n, p+1, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), p)
		}
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, target)

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	m := &Model{
		Intercept: beta.AtVec(0),
		Coef:      make([]float64, p),
	}
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j + 1)
	}
	return m, nil
}

// Predict evaluates the model on one predictor row.
func (m *Model) Predict(row []float64) float64 {
	y := m.Intercept
	for j, c := range m.Coef {
		y += c * row[j]
	}
	return y
}
