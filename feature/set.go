package feature

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var ErrFeatureLenMismatch = errors.New("feature length does not match set length")

// Set maps features to their observed values. All features in a set have the same number of
// observations.
type Set struct {
	m      int
	set    map[string][]float64
	labels map[string]Feature
}

// NewSet creates an empty feature set
func NewSet() *Set {
	return &Set{
		set:    make(map[string][]float64),
		labels: make(map[string]Feature),
	}
}

// Len returns the number of features in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.set)
}

// Rows returns the number of observations of each feature
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the feature data. The first feature stored determines the number of observations
// of the set and any later feature must match it.
func (s *Set) Set(f Feature, data []float64) error {
	if s.Len() == 0 {
		s.m = len(data)
	}
	if len(data) != s.m {
		return fmt.Errorf("%s has %d observations, expected %d, %w", f, len(data), s.m, ErrFeatureLenMismatch)
	}
	key := f.String()
	s.set[key] = data
	s.labels[key] = f
	return nil
}

// Get returns the feature data if it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) {
	if s == nil {
		return
	}
	key := f.String()
	delete(s.set, key)
	delete(s.labels, key)
}

// Update copies all features of the other set into this set
func (s *Set) Update(other *Set) error {
	if other == nil {
		return nil
	}
	for _, f := range other.Labels().Labels() {
		data, _ := other.Get(f)
		if err := s.Set(f, data); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns a new set with only the features of the provided type
func (s *Set) Filter(fType FeatureType) *Set {
	res := NewSet()
	if s == nil {
		return res
	}
	for key, f := range s.labels {
		if f.Type() != fType {
			continue
		}
		res.labels[key] = f
		res.set[key] = s.set[key]
		res.m = s.m
	}
	return res
}

// Labels returns the sorted features of the set
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}

	labels := make([]Feature, 0, len(s.labels))
	for _, f := range s.labels {
		labels = append(labels, f)
	}
	sort.Slice(
		labels,
		func(i, j int) bool {
			return labels[i].String() < labels[j].String()
		},
	)
	return NewLabels(labels)
}

// Matrix returns the design matrix of the set in label order. The matrix has m rows
// representing the number of observations and n columns representing the number of features.
func (s *Set) Matrix() *mat.Dense {
	if s.Len() == 0 || s.m == 0 {
		return nil
	}

	labels := s.Labels().Labels()
	n := len(labels)
	obs := make([]float64, s.m*n)
	for j, label := range labels {
		data := s.set[label.String()]
		for i := 0; i < s.m; i++ {
			obs[n*i+j] = data[i]
		}
	}
	return mat.NewDense(s.m, n, obs)
}
