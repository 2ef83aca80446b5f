// Package forecast fits a single additive linear model of growth, changepoints, seasonality and
// events to a univariate time series
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/augur-forecast/augur/feature"
	"github.com/augur-forecast/augur/forecast/options"
	"github.com/augur-forecast/augur/models"
	"github.com/augur-forecast/augur/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
)

// Forecast represents a single forecast model of a time series. This is a linear model using
// coordinate descent to calculate the weights. This will decompose the series into growth,
// trend changes (based on changepoint times), seasonal and event components.
type Forecast struct {
	opt    *options.Options
	scores *Scores // score calculations after training

	// model coefficients
	fLabels *feature.Labels
	coef    []float64

	trainStartTime  time.Time
	trainEndTime    time.Time
	residual        []float64
	trainComponents Components

	trained bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}

	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	opt := model.Options
	if opt == nil {
		opt = options.NewDefaultOptions()
	}

	f := &Forecast{
		opt:            opt.Copy(),
		fLabels:        feature.NewLabels(labels),
		coef:           model.Weights.Coefficients(),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

func (f *Forecast) generateFeatures(t []time.Time) (*feature.Set, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	tFeat := f.opt.GenerateTimeFeatures(t, f.trainStartTime, f.trainEndTime)

	x, err := f.opt.GenerateFourierFeatures(tFeat)
	if err != nil {
		return nil, err
	}

	// epoch is only used to derive the other features
	tFeat.Del(feature.NewTime(options.LabelTimeEpoch))
	if err := x.Update(tFeat); err != nil {
		return nil, err
	}

	chptOpt := f.opt.ChangepointOptions
	chptFeat := chptOpt.GenerateFeatures(chptOpt.Changepoints, t, f.trainStartTime, f.trainEndTime)
	if err := x.Update(chptFeat); err != nil {
		return nil, err
	}

	if err := x.Update(f.opt.GenerateEventFeatures(t)); err != nil {
		return nil, err
	}
	return x, nil
}

// Fit takes the input training data and fits a forecast model for possible changepoints,
// seasonal components, events and growth. Time points must be strictly increasing and NaN values
// are ignored.
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}

	// drop out nans
	trainingT := make([]time.Time, 0, len(trainingData.T))
	trainingY := make([]float64, 0, len(trainingData.Y))
	for i := 0; i < len(trainingData.T); i++ {
		if math.IsNaN(trainingData.Y[i]) {
			continue
		}
		trainingT = append(trainingT, trainingData.T[i])
		trainingY = append(trainingY, trainingData.Y[i])
	}

	if len(trainingT) <= 1 {
		return ErrInsufficientTrainingData
	}

	ts := timedataset.TimeSlice(trainingT)
	f.trainStartTime = ts.StartTime()
	f.trainEndTime = ts.EndTime()
	f.opt = f.opt.Resolve(trainingT)

	// generate features
	x, err := f.generateFeatures(trainingT)
	if err != nil {
		return err
	}
	f.fLabels = x.Labels()
	features := x.Matrix()
	if features == nil {
		return ErrNoModelCoefficients
	}

	// scale observations so regularization is independent of the magnitude of the series
	yScale := floats.Norm(trainingY, math.Inf(1))
	if yScale == 0 {
		yScale = 1.0
	}
	scaledY := make([]float64, len(trainingY))
	copy(scaledY, trainingY)
	floats.Scale(1.0/yScale, scaledY)
	observations := mat.NewDense(len(scaledY), 1, scaledY)

	model, err := models.NewLassoRegression(f.opt.NewLassoOptions(f.fLabels))
	if err != nil {
		return fmt.Errorf("unable to initialize regression, %w", err)
	}
	if err := model.Fit(features, observations); err != nil {
		return fmt.Errorf("unable to fit regression, %w", err)
	}

	coef := model.Coef()
	floats.Scale(yScale, coef)
	f.coef = coef
	f.trained = true

	// use input training to include NaNs
	predicted, comp, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.Y))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual

	return nil
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}

	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	x, err := f.generateFeatures(t)
	if err != nil {
		return nil, Components{}, err
	}

	comp := Components{
		Trend:       make([]float64, len(t)),
		Seasonality: make([]float64, len(t)),
		Event:       make([]float64, len(t)),
	}
	res := make([]float64, len(t))
	for i, label := range f.fLabels.Labels() {
		w := f.coef[i]
		if w == 0 {
			continue
		}
		// features absent from the inference window contribute nothing
		data, exists := x.Get(label)
		if !exists {
			continue
		}

		var dst []float64
		switch label.Type() {
		case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
			dst = comp.Trend
		case feature.FeatureTypeSeasonality:
			dst = comp.Seasonality
		case feature.FeatureTypeEvent:
			dst = comp.Event
		}
		if dst != nil {
			floats.AddScaled(dst, w, data)
		}
		floats.AddScaled(res, w, data)
	}
	return res, comp, nil
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}

	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Model returns the serializeable format of the forecast model composing of the
// resolved forecast options, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	for i, label := range f.fLabels.Labels() {
		fws = append(fws, NewFeatureWeight(label, f.coef[i]))
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt.Copy(),
		Weights:        Weights{Coef: fws},
		Scores:         f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if len(f.coef) == 0 {
		return "", ErrNoModelCoefficients
	}

	eq := "y ~"
	for i, label := range f.fLabels.Labels() {
		if f.coef[i] == 0 {
			continue
		}
		eq += fmt.Sprintf(" %+.2f*%s", f.coef[i], label)
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// TrainEndTime returns the last observed time of the training data
func (f *Forecast) TrainEndTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainEndTime
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent represents the overall trend component of the model which is determined
// by the growth and changepoints.
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the overall seasonal component of the model
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}
