package engine

import (
	"errors"
	"io"
	"time"

	forecaster "github.com/augur-forecast/augur"
	"github.com/augur-forecast/augur/internal/series"
)

// Row is one forecast point with its uncertainty interval
type Row struct {
	DS        time.Time `json:"ds"`
	YHat      float64   `json:"yhat"`
	YHatLower float64   `json:"yhat_lower"`
	YHatUpper float64   `json:"yhat_upper"`
}

// ForecastResult holds the forecast over the cleaned history followed by the horizon. It is not
// modified after creation and every accessor returns a copy.
type ForecastResult struct {
	rows     []Row
	history  []series.Row
	horizon  int
	equation string
	model    *forecaster.Model
	fitted   *forecaster.Forecaster
}

var ErrNoFittedModel = errors.New("no fitted model recorded for result")

// NewForecastResult copies rows and history into a result
func NewForecastResult(rows []Row, history []series.Row, horizon int, equation string) *ForecastResult {
	r := &ForecastResult{
		rows:     make([]Row, len(rows)),
		history:  make([]series.Row, len(history)),
		horizon:  horizon,
		equation: equation,
	}
	copy(r.rows, rows)
	copy(r.history, history)
	return r
}

// Rows returns the forecast rows ascending by ds
func (r *ForecastResult) Rows() []Row {
	rows := make([]Row, len(r.rows))
	copy(rows, r.rows)
	return rows
}

// Len returns the number of forecast rows
func (r *ForecastResult) Len() int {
	return len(r.rows)
}

// History returns the observations the model was fit on, ascending by ds with unique dates
func (r *ForecastResult) History() []series.Row {
	h := make([]series.Row, len(r.history))
	copy(h, r.history)
	return h
}

// Horizon returns the number of future rows at the end of the result
func (r *ForecastResult) Horizon() int {
	return r.horizon
}

// Future returns only the rows past the last historical date
func (r *ForecastResult) Future() []Row {
	future := make([]Row, r.horizon)
	copy(future, r.rows[len(r.rows)-r.horizon:])
	return future
}

// Equation returns the fitted series model in y ~ form
func (r *ForecastResult) Equation() string {
	return r.equation
}

// Model returns the fitted model, if the engine recorded one
func (r *ForecastResult) Model() (forecaster.Model, bool) {
	if r.model == nil {
		return forecaster.Model{}, false
	}
	return *r.model, true
}

// WriteFitChart writes the fit diagnostics page: the fit over the history and horizon, the trend
// and seasonality components and the residual
func (r *ForecastResult) WriteFitChart(w io.Writer) error {
	if r.fitted == nil {
		return ErrNoFittedModel
	}
	return r.fitted.PlotFit(w, &forecaster.PlotOpts{
		HorizonCnt:      r.horizon,
		HorizonInterval: 24 * time.Hour,
	})
}
