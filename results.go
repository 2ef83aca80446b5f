package forecaster

import (
	"time"

	"github.com/augur-forecast/augur/forecast"
)

// Results holds the forecast and the uncertainty interval for each requested time point
type Results struct {
	T                  []time.Time          `json:"time"`
	Forecast           []float64            `json:"forecast"`
	Upper              []float64            `json:"upper"`
	Lower              []float64            `json:"lower"`
	SeriesComponents   forecast.Components  `json:"series_components"`
	ResidualComponents *forecast.Components `json:"residual_components,omitempty"`
}
