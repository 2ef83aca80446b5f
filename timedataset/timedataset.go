// Package timedataset holds validated time series used for training and simulation helpers used
// to generate synthetic series
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time data")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice. Time
// points must be strictly increasing. Inputs are copied.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	td := &TimeDataset{
		T: make([]time.Time, len(t)),
		Y: make([]float64, len(y)),
	}
	copy(td.T, t)
	copy(td.Y, y)
	return td, nil
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.T)
}

// Copy returns a deep copy of the dataset
func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.Y))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// Exclude returns a new dataset without the observations at the provided indices
func (td *TimeDataset) Exclude(idx []int) *TimeDataset {
	drop := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		drop[i] = struct{}{}
	}

	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	for i := range td.T {
		if _, exists := drop[i]; exists {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, td.Y[i])
	}
	return res
}
