// Package feature contains the labelled regressors used by a forecast model. Every feature
// can be decoded into a flat label map so a fit model can be serialized and restored.
package feature

// FeatureType describes the family of a feature
type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeTime        FeatureType = "time"
	FeatureTypeEvent       FeatureType = "event"
	FeatureTypeGrowth      FeatureType = "growth"
)

// Feature is a single labelled regressor
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
	UnmarshalJSON([]byte) error
}
