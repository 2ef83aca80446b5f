package feature

// Labels tracks a slice of features and their index locations that match up
// with the ordering of the coefficients assigned to each of these features.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

// NewLabels indexes the slice of features by their string representation
func NewLabels(labels []Feature) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i].String()] = i
	}
	fl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return fl
}

func (f *Labels) Len() int {
	if f == nil {
		return 0
	}
	return len(f.labels)
}

// Labels returns a copy of the features in coefficient order
func (f *Labels) Labels() []Feature {
	if f == nil {
		return nil
	}
	labels := make([]Feature, len(f.labels))
	copy(labels, f.labels)
	return labels
}

// Index returns the coefficient position of the feature
func (f *Labels) Index(label Feature) (int, bool) {
	if f == nil {
		return -1, false
	}
	if idx, exists := f.idx[label.String()]; exists {
		return idx, exists
	}
	return -1, false
}
