package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FourierComp is either the sine or cosine component of a fourier order
type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

// Seasonality feature representing a single fourier component of a seasonal period
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

// NewSeasonality creates a new seasonality feature
func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

// String returns the string representation of the seasonality feature
func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

// Type returns the type of this feature
func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

// Decode converts the feature into a map of label values
func (s Seasonality) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = s.Name
	res["fourier_component"] = string(s.FourierComp)
	res["order"] = strconv.Itoa(s.Order)
	return res
}

// UnmarshalJSON converts a label map into a seasonality feature
func (s *Seasonality) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name        string `json:"name"`
		FourierComp string `json:"fourier_component"`
		Order       string `json:"order"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	s.Name = labelStr.Name
	s.FourierComp = FourierComp(labelStr.FourierComp)
	s.Order, err = strconv.Atoi(labelStr.Order)
	if err != nil {
		return err
	}
	return nil
}

// Generate computes the fourier component for epoch seconds given a period in seconds
func (s Seasonality) Generate(epoch []float64, order int, period float64) []float64 {
	omega := 2.0 * math.Pi * float64(order) / period
	feat := make([]float64, len(epoch))
	for i, e := range epoch {
		rad := omega * e
		switch s.FourierComp {
		case FourierCompSin:
			feat[i] = math.Sin(rad)
		case FourierCompCos:
			feat[i] = math.Cos(rad)
		}
	}
	return feat
}
