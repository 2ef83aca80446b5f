// Package engine fits an additive regression model to a historical series and projects it
// forward by a number of days
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	forecaster "github.com/augur-forecast/augur"
	"github.com/augur-forecast/augur/internal/config"
	"github.com/augur-forecast/augur/internal/series"
)

const (
	DefaultHorizon    = 90
	DefaultMaxHorizon = 3650

	minHistory = 2
)

var (
	ErrInsufficientHistory = errors.New("at least 2 dates with values are required")
	ErrInvalidHorizon      = errors.New("invalid forecast horizon")
)

// FitError wraps any failure of the forecasting model
type FitError struct {
	Err error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("unable to fit forecast, %s", e.Err.Error())
}

func (e *FitError) Unwrap() error {
	return e.Err
}

// Engine turns a historical series into a forecast of horizon future days
type Engine interface {
	FitAndForecast(h series.Historical, horizon int) (*ForecastResult, error)
}

// Additive forecasts with linear growth, automatic changepoints, fourier seasonality and
// optional country holidays
type Additive struct {
	cfg    config.ForecastConfig
	logger *slog.Logger
}

// NewAdditive returns an additive engine. A zero MaxHorizon uses DefaultMaxHorizon.
func NewAdditive(cfg config.ForecastConfig, logger *slog.Logger) *Additive {
	if cfg.MaxHorizon == 0 {
		cfg.MaxHorizon = DefaultMaxHorizon
	}
	if cfg.IntervalWidth == 0 {
		cfg.IntervalWidth = forecaster.DefaultIntervalWidth
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Countries = append([]string(nil), cfg.Countries...)
	return &Additive{
		cfg:    cfg,
		logger: logger.With("component", "engine"),
	}
}

// ValidateHorizon rejects horizons below 1 or above the configured maximum
func (a *Additive) ValidateHorizon(horizon int) error {
	return ValidateHorizon(horizon, a.cfg.MaxHorizon)
}

// ValidateHorizon rejects horizons below 1 or above maxHorizon
func ValidateHorizon(horizon, maxHorizon int) error {
	if horizon < 1 {
		return fmt.Errorf("%w, %d is less than 1", ErrInvalidHorizon, horizon)
	}
	if horizon > maxHorizon {
		return fmt.Errorf("%w, %d is greater than %d", ErrInvalidHorizon, horizon, maxHorizon)
	}
	return nil
}

// Options builds the forecaster options from the engine configuration
func (a *Additive) Options() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	opt.IntervalWidth = a.cfg.IntervalWidth
	opt.ResidualWindow = a.cfg.ResidualWindow
	if a.cfg.OutlierPasses > 0 {
		opt.OutlierOptions = forecaster.NewOutlierOptions()
		opt.OutlierOptions.NumPasses = a.cfg.OutlierPasses
	}

	so := opt.SeriesOptions
	so.Regularization = a.cfg.Regularization
	so.ChangepointOptions.Auto = a.cfg.NumChangepoints > 0
	so.ChangepointOptions.AutoNumChangepoints = a.cfg.NumChangepoints
	so.EventOptions.Countries = append([]string(nil), a.cfg.Countries...)
	return opt
}

// FitAndForecast drops missing values, merges duplicate dates by averaging, fits the model and
// predicts the history followed by horizon daily points after the last date
func (a *Additive) FitAndForecast(h series.Historical, horizon int) (*ForecastResult, error) {
	if err := a.ValidateHorizon(horizon); err != nil {
		return nil, err
	}

	history := Clean(h.Rows())
	if len(history) < minHistory {
		return nil, &FitError{Err: ErrInsufficientHistory}
	}

	t := make([]time.Time, len(history))
	y := make([]float64, len(history))
	for i, r := range history {
		t[i] = r.DS
		y[i] = r.Y
	}

	start := time.Now()
	f, err := forecaster.New(a.Options())
	if err != nil {
		return nil, &FitError{Err: err}
	}
	if err := f.Fit(t, y); err != nil {
		return nil, &FitError{Err: err}
	}

	predT := make([]time.Time, 0, len(t)+horizon)
	predT = append(predT, t...)
	predT = append(predT, FutureDates(t[len(t)-1], horizon)...)
	res, err := f.Predict(predT)
	if err != nil {
		return nil, &FitError{Err: err}
	}

	rows := make([]Row, len(predT))
	for i := range predT {
		rows[i] = Row{
			DS:        predT[i],
			YHat:      res.Forecast[i],
			YHatLower: res.Lower[i],
			YHatUpper: res.Upper[i],
		}
	}

	eq, err := f.SeriesModelEq()
	if err != nil {
		a.logger.Warn("unable to describe series model", "error", err.Error())
	}

	result := NewForecastResult(rows, history, horizon, eq)
	result.fitted = f
	if m, err := f.Model(); err != nil {
		a.logger.Warn("unable to export series model", "error", err.Error())
	} else {
		result.model = &m
	}

	a.logger.Debug("forecast complete",
		"history", len(history),
		"dropped", h.Len()-len(history),
		"horizon", horizon,
		"duration", time.Since(start).String(),
	)
	return result, nil
}

// Clean drops rows with missing values, sorts by date and averages the values of duplicate
// dates
func Clean(rows []series.Row) []series.Row {
	valid := make([]series.Row, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.Y) {
			continue
		}
		valid = append(valid, r)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].DS.Before(valid[j].DS)
	})

	cleaned := make([]series.Row, 0, len(valid))
	for i := 0; i < len(valid); {
		j := i
		sum := 0.0
		for j < len(valid) && valid[j].DS.Equal(valid[i].DS) {
			sum += valid[j].Y
			j++
		}
		cleaned = append(cleaned, series.Row{DS: valid[i].DS, Y: sum / float64(j-i)})
		i = j
	}
	return cleaned
}

// FutureDates returns the n calendar days following last
func FutureDates(last time.Time, n int) []time.Time {
	last = last.UTC()
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = last.AddDate(0, 0, i+1)
	}
	return dates
}
