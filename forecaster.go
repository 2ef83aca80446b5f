// Package forecaster fits an additive forecast of a univariate time series along with an
// uncertainty interval derived from a forecast of the rolling residual standard deviation.
package forecaster

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/augur-forecast/augur/forecast"
	"github.com/augur-forecast/augur/stats"
	"github.com/augur-forecast/augur/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientResidual = errors.New("insufficient samples from residual after outlier removal")
	ErrNoOptionsInModel     = errors.New("no options set in model")
	ErrUntrainedForecaster  = errors.New("forecaster has not been trained yet")
)

const (
	MinResidualWindow       = 2
	MinResidualSize         = 2
	MinResidualWindowFactor = 4
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast   *forecast.Forecast
	residualForecast *forecast.Forecast

	// residualConst is the interval half width used when the residual could not be forecasted
	residualConst float64

	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	residual        []float64
	trained         bool
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	f := &Forecaster{
		opt: opt,
	}

	seriesForecast, err := forecast.New(f.opt.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}
	f.seriesForecast = seriesForecast
	return f, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model. This should be generated from
// from a previous forecaster call to Model().
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}

	f := &Forecaster{
		opt:            model.Options,
		seriesForecast: seriesForecast,
		residualConst:  model.ResidualConstant,
		trained:        true,
	}

	if model.Residual != nil {
		residualForecast, err := forecast.NewFromModel(*model.Residual)
		if err != nil {
			return nil, fmt.Errorf("unable to load from residual model, %w", err)
		}
		f.residualForecast = residualForecast
	}
	return f, nil
}

// Fit uses the input time dataset and fits the forecast model. Time points must be strictly
// increasing and NaN values are treated as missing.
func (f *Forecaster) Fit(t []time.Time, y []float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	f.fitTrainingData = td.Copy()

	residual, err := f.fitSeriesWithOutliers(td)
	if err != nil {
		return err
	}
	f.residual = residual

	if err := f.fitResidual(td.T, residual); err != nil {
		return err
	}
	f.trained = true

	f.fitResults, err = f.Predict(td.T)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}

	return nil
}

// fitSeriesWithOutliers fits the series and returns the residual against the input. Detected
// outliers are masked as NaN and the series is refit up to the configured number of passes.
func (f *Forecaster) fitSeriesWithOutliers(td *timedataset.TimeDataset) ([]float64, error) {
	numPasses := 0
	if f.opt.OutlierOptions != nil {
		numPasses = f.opt.OutlierOptions.NumPasses
	}

	y := make([]float64, len(td.Y))
	copy(y, td.Y)

	var residual []float64
	for i := 0; i <= numPasses; i++ {
		if err := f.seriesForecast.Fit(td.T, y); err != nil {
			return nil, fmt.Errorf("unable to forecast series, %w", err)
		}

		residual = f.seriesForecast.Residuals()

		// break out if no outlier options provided
		if f.opt.OutlierOptions == nil || i == numPasses {
			break
		}

		outlierIdxs := stats.DetectOutliers(
			residual,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)

		// no more outliers detected with outlier options so break early
		if len(outlierIdxs) == 0 {
			break
		}
		slog.Debug("masking outliers", "pass", i, "count", len(outlierIdxs))

		for _, idx := range outlierIdxs {
			y[idx] = math.NaN()
		}
	}
	return residual, nil
}

// residualWindow limits the configured residual window to a quarter of the residual size
func (f *Forecaster) residualWindow(n int) int {
	window := f.opt.ResidualWindow
	if n/MinResidualWindowFactor < window {
		window = n / MinResidualWindowFactor
	}
	if window < MinResidualWindow {
		window = MinResidualWindow
	}
	return window
}

// fitResidual computes a rolling window standard deviation of the residual scaled by the
// interval z-score and fits a forecast to it. The window is not necessarily a block of
// continuous time but could jump across missing or outlier points. Falls back to a constant
// interval if there are too few points to forecast.
func (f *Forecaster) fitResidual(t []time.Time, residual []float64) error {
	f.residualForecast = nil
	f.residualConst = 0

	resT := make([]time.Time, 0, len(residual))
	resY := make([]float64, 0, len(residual))
	for i, r := range residual {
		if math.IsNaN(r) {
			continue
		}
		resT = append(resT, t[i])
		resY = append(resY, r)
	}
	if len(resY) < MinResidualSize {
		return ErrInsufficientResidual
	}

	z := f.opt.ZScore()
	window := f.residualWindow(len(resY))
	if window > len(resY) {
		window = len(resY)
	}

	numWindows := len(resY) - window + 1
	stddevSeries := make([]float64, numWindows)
	for i := 0; i < numWindows; i++ {
		stddevSeries[i] = z * stat.StdDev(resY[i:i+window], nil)
	}
	f.residualConst = floats.Sum(stddevSeries) / float64(numWindows)

	if numWindows < MinResidualSize {
		slog.Debug("using constant uncertainty interval", "num_windows", numWindows)
		return nil
	}

	// shifting by half the residual window since computing the residual series is similar to a
	// finite impulse response filtering having a group delay of window/2.
	start := window / 2
	end := len(resT) - window/2 - window%2 + 1

	residualForecast, err := forecast.New(f.opt.ResidualOptions)
	if err != nil {
		return fmt.Errorf("unable to initialize forecast residual, %w", err)
	}
	if err := residualForecast.Fit(resT[start:end], stddevSeries); err != nil {
		slog.Warn("unable to forecast residual, using constant uncertainty interval", "error", err.Error())
		return nil
	}
	f.residualForecast = residualForecast
	return nil
}

// Predict takes in any set of time samples and generates a forecast, upper, lower values per time point
func (f *Forecaster) Predict(t []time.Time) (*Results, error) {
	if f == nil || !f.trained {
		return nil, ErrUntrainedForecaster
	}

	seriesRes, seriesComp, err := f.seriesForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}

	r := &Results{
		T:                t,
		Forecast:         seriesRes,
		SeriesComponents: seriesComp,
	}

	residualRes := make([]float64, len(t))
	if f.residualForecast != nil {
		var residualComp forecast.Components
		residualRes, residualComp, err = f.residualForecast.Predict(t)
		if err != nil {
			return nil, fmt.Errorf("unable to predict residual forecasts, %w", err)
		}
		r.ResidualComponents = &residualComp
	} else {
		floats.AddConst(f.residualConst, residualRes)
	}

	// cap residual predictions to be greater than or equal to 0
	for i := 0; i < len(residualRes); i++ {
		if residualRes[i] < 0.0 || math.IsNaN(residualRes[i]) {
			residualRes[i] = 0.0
		}
	}

	upper := make([]float64, len(seriesRes))
	lower := make([]float64, len(seriesRes))
	floats.AddTo(upper, seriesRes, residualRes)
	floats.SubTo(lower, seriesRes, residualRes)
	r.Upper = upper
	r.Lower = lower
	return r, nil
}

// Residuals returns the difference between the final series fit against the training data
func (f *Forecaster) Residuals() []float64 {
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent returns the trend component created by growth and changepoints after fitting
func (f *Forecaster) TrendComponent() []float64 {
	return f.seriesForecast.TrendComponent()
}

// SeasonalityComponent returns the seasonality component after fitting the fourier series
func (f *Forecaster) SeasonalityComponent() []float64 {
	return f.seriesForecast.SeasonalityComponent()
}

// SeriesCoefficients returns all coefficient weight associated with the component label string
func (f *Forecaster) SeriesCoefficients() (map[string]float64, error) {
	return f.seriesForecast.Coefficients()
}

// ResidualCoefficients returns all uncertainty coefficient weights associated with the component label string
func (f *Forecaster) ResidualCoefficients() (map[string]float64, error) {
	if f.residualForecast == nil {
		return nil, forecast.ErrNoModelCoefficients
	}
	return f.residualForecast.Coefficients()
}

// Model generates a serializeable representation of the fit options, series model, and uncertainty model. This
// can be used to initialize a new Forecaster for immediate predictions skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	m := Model{
		Options:          f.opt,
		Series:           seriesModel,
		ResidualConstant: f.residualConst,
	}
	if f.residualForecast != nil {
		residualModel, err := f.residualForecast.Model()
		if err != nil {
			return Model{}, fmt.Errorf("unable to fetch residual model, %w", err)
		}
		m.Residual = &residualModel
	}
	return m, nil
}

// SeriesModelEq returns a string representation of the fit series model represented as
// y ~ m1x1 + m2x2 ...
func (f *Forecaster) SeriesModelEq() (string, error) {
	return f.seriesForecast.ModelEq()
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the results of the fit which includes the forecast, upper, and lower values
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}
