// Package models contains the linear regression solvers used to fit a forecast
package models

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
)

// Model is a linear model that can be fit and used for inference
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

// withIntercept prepends a constant 1.0 column to the design matrix
func withIntercept(x mat.Matrix) mat.Matrix {
	m, n := x.Dims()
	res := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		res.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			res.Set(i, j+1, x.At(i, j))
		}
	}
	return res
}

func predict(x mat.Matrix, intercept float64, coef []float64, fitIntercept bool) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != len(coef) {
		return nil, ErrFeatureLenMismatch
	}

	res := make([]float64, m)
	for i := 0; i < m; i++ {
		var val float64
		if fitIntercept {
			val = intercept
		}
		for j := 0; j < n; j++ {
			val += coef[j] * x.At(i, j)
		}
		res[i] = val
	}
	return res, nil
}
