package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Time is a raw time derived feature e.g. unix epoch seconds. It is used to generate
// other features and is never fit on directly.
type Time struct {
	Name string `json:"name"`
}

// NewTime creates a new time feature
func NewTime(name string) *Time {
	return &Time{name}
}

// String returns the string representation of the time feature
func (t Time) String() string {
	return fmt.Sprintf("tfeat_%s", t.Name)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (t Time) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return t.Name, true
	}
	return "", false
}

// Type returns the type of this feature
func (t Time) Type() FeatureType {
	return FeatureTypeTime
}

// Decode converts the feature into a map of label values
func (t Time) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = t.Name
	return res
}

// UnmarshalJSON converts a label map into a time feature
func (t *Time) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	t.Name = labelStr.Name
	return nil
}

// Generate returns the unix epoch in seconds with sub-second precision for each time point
func (t Time) Generate(tSeries []time.Time) []float64 {
	epoch := make([]float64, len(tSeries))
	for i, tPnt := range tSeries {
		epoch[i] = float64(tPnt.UnixNano()) / 1e9
	}
	return epoch
}
