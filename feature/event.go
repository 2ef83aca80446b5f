package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Event feature representing a span of time, e.g. a holiday, that is modelled separately
// as a bias from the rest of the series.
type Event struct {
	Name string `json:"name"`
}

// NewEvent creates a new event instance given a name
func NewEvent(name string) *Event {
	return &Event{name}
}

// String returns the string representation of the event feature
func (e Event) String() string {
	return fmt.Sprintf("event_%s", e.Name)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (e Event) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return e.Name, true
	}
	return "", false
}

// Type returns the type of this feature
func (e Event) Type() FeatureType {
	return FeatureTypeEvent
}

// Decode converts the feature into a map of label values
func (e Event) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = e.Name
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to an event feature
func (e *Event) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	e.Name = labelStr.Name
	return nil
}
