// Package stats contains robust statistics helpers used when preparing training data
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DetectOutliers returns the indices of values outside of the percentile range extended by a
// tukey factor of the inner range. NaN values are ignored.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)
	if lowerPerc > upperPerc {
		lowerPerc, upperPerc = upperPerc, lowerPerc
	}

	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) < 2 {
		return nil
	}
	sort.Float64s(sorted)

	lower := stat.Quantile(lowerPerc, stat.Empirical, sorted, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, sorted, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		if v > upper || v < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
