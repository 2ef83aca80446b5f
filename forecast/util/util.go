// Package util holds small helpers shared by the forecast packages
package util

// IndentExpand repeats indent growth times
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indent...)
	}
	return string(out)
}

// SliceMap applies lambda to every element in place and returns the slice
func SliceMap(arr []float64, lambda func(float64) float64) []float64 {
	for i, v := range arr {
		arr[i] = lambda(v)
	}
	return arr
}
