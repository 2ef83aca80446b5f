package forecaster

import (
	"fmt"
	"io"

	"github.com/augur-forecast/augur/forecast"
)

// Model is the serializeable representation of a fit Forecaster. Residual is nil when the
// uncertainty interval is a constant.
type Model struct {
	Options          *Options        `json:"options"`
	Series           forecast.Model  `json:"series_model"`
	Residual         *forecast.Model `json:"residual_model,omitempty"`
	ResidualConstant float64         `json:"residual_constant"`
}

// TablePrint writes a human readable summary of the series and uncertainty models
func (m Model) TablePrint(w io.Writer) error {
	if err := m.Series.TablePrint(w, "Series: ", "  "); err != nil {
		return err
	}
	if m.Residual == nil {
		_, err := fmt.Fprintf(w, "Uncertainty: constant %.3f\n", m.ResidualConstant)
		return err
	}
	return m.Residual.TablePrint(w, "Uncertainty: ", "  ")
}
