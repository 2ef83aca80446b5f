package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ChangepointComp is the component of a changepoint, either a jump or a change in slope
type ChangepointComp string

const (
	ChangepointCompBias  ChangepointComp = "bias"
	ChangepointCompSlope ChangepointComp = "slope"
)

// Changepoint feature representing a point in time where the trend changes
type Changepoint struct {
	Name            string          `json:"name"`
	ChangepointComp ChangepointComp `json:"changepoint_component"`
}

// NewChangepoint creates a new changepoint feature
func NewChangepoint(name string, comp ChangepointComp) *Changepoint {
	return &Changepoint{name, comp}
}

// String returns the string representation of the changepoint feature
func (c Changepoint) String() string {
	return fmt.Sprintf("chpnt_%s_%s", c.Name, c.ChangepointComp)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (c Changepoint) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return c.Name, true
	case "changepoint_component":
		return string(c.ChangepointComp), true
	}
	return "", false
}

// Type returns the type of this feature
func (c Changepoint) Type() FeatureType {
	return FeatureTypeChangepoint
}

// Decode converts the feature into a map of label values
func (c Changepoint) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = c.Name
	res["changepoint_component"] = string(c.ChangepointComp)
	return res
}

// UnmarshalJSON converts a label map into a changepoint feature
func (c *Changepoint) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name            string `json:"name"`
		ChangepointComp string `json:"changepoint_component"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	c.Name = labelStr.Name
	c.ChangepointComp = ChangepointComp(labelStr.ChangepointComp)
	return nil
}
