package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the fit scores
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAE  float64 `json:"mean_absolute_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mae, err := MAE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		MSE:  mse,
		MAE:  mae,
		MAPE: mape,
		R2:   rs,
	}, nil
}

// meanOf averages the value of errFunc over the pairs where neither value is NaN. skip can
// exclude additional pairs.
func meanOf(predicted, actual []float64, errFunc func(p, a float64) float64, skip func(a float64) bool) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var total float64
	var cnt int
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		if skip != nil && skip(actual[i]) {
			continue
		}
		total += errFunc(predicted[i], actual[i])
		cnt++
	}
	if cnt == 0 {
		return 0, nil
	}
	return total / float64(cnt), nil
}

// MSE computes the mean squared error. This is the same as mean((y-yhat)^2).
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	return meanOf(predicted, actual, func(p, a float64) float64 {
		return (a - p) * (a - p)
	}, nil)
}

// MAE computes the mean absolute error. This is the same as mean(abs(y-yhat)).
func MAE(predicted, actual []float64) (float64, error) {
	return meanOf(predicted, actual, func(p, a float64) float64 {
		return math.Abs(a - p)
	}, nil)
}

// MAPE calculates the mean average percent error. This is the same as mean(abs((y-yhat)/y))
// ignoring zero actuals. A score of 0 means a perfect match with no errors.
func MAPE(predicted, actual []float64) (float64, error) {
	return meanOf(predicted, actual, func(p, a float64) float64 {
		return math.Abs((a - p) / a)
	}, func(a float64) bool {
		return a == 0
	})
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	if len(actualCopy) == 0 {
		return 1.0, nil
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}
