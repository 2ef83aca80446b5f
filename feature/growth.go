package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	GrowthIntercept = "intercept"
	GrowthLinear    = "linear"
)

// Growth represents the base trend of the series. The intercept is a constant and linear growth
// is the time elapsed since the start of training normalized by the training window.
type Growth struct {
	Name string `json:"name"`
}

// NewGrowth creates a new growth feature
func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// Intercept returns the constant growth feature
func Intercept() *Growth {
	return NewGrowth(GrowthIntercept)
}

// Linear returns the linear growth feature
func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

// String returns the string representation of the growth feature
func (g Growth) String() string {
	return fmt.Sprintf("growth_%s", g.Name)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (g Growth) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return g.Name, true
	}
	return "", false
}

// Type returns the type of this feature
func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

// Decode converts the feature into a map of label values
func (g Growth) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = g.Name
	return res
}

// UnmarshalJSON converts a label map into a growth feature
func (g *Growth) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	g.Name = labelStr.Name
	return nil
}

// Generate computes the growth feature from epoch seconds. Linear growth is 0 at the start of
// training and 1 at the end of training and keeps growing past the training window.
func (g Growth) Generate(epoch []float64, trainStart, trainEnd time.Time) []float64 {
	feat := make([]float64, len(epoch))
	switch g.Name {
	case GrowthIntercept:
		for i := range feat {
			feat[i] = 1.0
		}
	case GrowthLinear:
		start := float64(trainStart.UnixNano()) / 1e9
		window := trainEnd.Sub(trainStart).Seconds()
		if window <= 0 {
			return feat
		}
		for i, e := range epoch {
			feat[i] = (e - start) / window
		}
	}
	return feat
}
