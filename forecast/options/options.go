// Package options contains all forecast options for a linear fit of a univariate time series
package options

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/augur-forecast/augur/feature"
	"github.com/augur-forecast/augur/forecast/util"
	"github.com/augur-forecast/augur/models"
)

const (
	LabelTimeEpoch = "epoch"

	DefaultRegularization = 0.0
)

var ErrUnknownTimeFeature = errors.New("unknown time feature")

// Options configures a forecast by specifying changepoints, seasonality order
// and an optional regularization parameter where higher values removes more changepoints
// that contribute the least to the fit.
type Options struct {
	ChangepointOptions ChangepointOptions `json:"changepoint_options"`

	// Lasso related options. Regularization is only applied to changepoint features.
	Regularization float64 `json:"regularization"`
	Iterations     int     `json:"iterations"`
	Tolerance      float64 `json:"tolerance"`

	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	EventOptions       EventOptions       `json:"event_options"`
	GrowthType         string             `json:"growth_type"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		ChangepointOptions: NewDefaultChangepointOptions(),
		Regularization:     DefaultRegularization,
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		GrowthType:         feature.GrowthLinear,
	}
}

// NewLassoOptions builds the regression options for a design matrix with the given feature labels
// penalizing only changepoint features
func (o *Options) NewLassoOptions(labels *feature.Labels) *models.LassoOptions {
	lassoOpt := models.NewDefaultLassoOptions()
	lassoOpt.Lambda = o.Regularization
	lassoOpt.FitIntercept = false

	lassoOpt.Iterations = o.Iterations
	if o.Iterations == 0 {
		lassoOpt.Iterations = models.DefaultIterations
	}

	lassoOpt.Tolerance = o.Tolerance
	if o.Tolerance == 0 {
		lassoOpt.Tolerance = models.DefaultTolerance
	}

	pf := make([]float64, labels.Len())
	for i, f := range labels.Labels() {
		if f.Type() == feature.FeatureTypeChangepoint {
			pf[i] = 1.0
		}
	}
	lassoOpt.PenaltyFactors = pf
	return lassoOpt
}

// GenerateTimeFeatures returns the epoch and growth features for the provided time points
func (o *Options) GenerateTimeFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) *feature.Set {
	if o == nil {
		o = NewDefaultOptions()
	}

	tFeat := feature.NewSet()

	epochFeat := feature.NewTime(LabelTimeEpoch)
	epoch := epochFeat.Generate(t)
	tFeat.Set(epochFeat, epoch)

	interceptFeat := feature.Intercept()
	tFeat.Set(interceptFeat, interceptFeat.Generate(epoch, trainStartTime, trainEndTime))

	if o.GrowthType == feature.GrowthLinear && trainEndTime.After(trainStartTime) {
		linearFeat := feature.Linear()
		tFeat.Set(linearFeat, linearFeat.Generate(epoch, trainStartTime, trainEndTime))
	}
	return tFeat
}

// GenerateFourierFeatures returns the sine and cosine features of each seasonality config using
// the epoch feature of tFeat
func (o *Options) GenerateFourierFeatures(tFeat *feature.Set) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if tFeat == nil {
		return nil, ErrUnknownTimeFeature
	}
	epoch, exists := tFeat.Get(feature.NewTime(LabelTimeEpoch))
	if !exists {
		return nil, ErrUnknownTimeFeature
	}

	x := feature.NewSet()
	for _, seasCfg := range o.SeasonalityOptions.validConfigs() {
		period := seasCfg.Period.Seconds()
		for order := 1; order <= seasCfg.Orders; order++ {
			sinFeat := feature.NewSeasonality(seasCfg.Name, feature.FourierCompSin, order)
			cosFeat := feature.NewSeasonality(seasCfg.Name, feature.FourierCompCos, order)
			if err := x.Set(sinFeat, sinFeat.Generate(epoch, order, period)); err != nil {
				return nil, fmt.Errorf("unable to generate seasonality features for %q, %w", seasCfg.Name, err)
			}
			if err := x.Set(cosFeat, cosFeat.Generate(epoch, order, period)); err != nil {
				return nil, fmt.Errorf("unable to generate seasonality features for %q, %w", seasCfg.Name, err)
			}
		}
	}
	return x, nil
}

// GenerateEventFeatures returns a mask feature per configured event
func (o *Options) GenerateEventFeatures(t []time.Time) *feature.Set {
	if o == nil {
		o = NewDefaultOptions()
	}
	return o.EventOptions.GenerateFeatures(t)
}

// TablePrint writes a human readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	fmt.Fprintf(w, "%s%sGrowth: %s\n", prefix, util.IndentExpand(indent, indentGrowth), o.GrowthType)
	fmt.Fprintf(w, "%s%sRegularization: %.3f\n", prefix, util.IndentExpand(indent, indentGrowth), o.Regularization)
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.EventOptions.TablePrint(w, prefix, indent, indentGrowth)
}

// Copy returns a deep copy of the options
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	res := *o
	res.ChangepointOptions.Changepoints = append([]Changepoint(nil), o.ChangepointOptions.Changepoints...)
	res.SeasonalityOptions.SeasonalityConfigs = append([]SeasonalityConfig(nil), o.SeasonalityOptions.SeasonalityConfigs...)
	res.EventOptions.Events = append([]Event(nil), o.EventOptions.Events...)
	res.EventOptions.Countries = append([]string(nil), o.EventOptions.Countries...)
	return &res
}

// Resolve returns a copy of the options with automatic changepoints and seasonality replaced by
// the explicit configuration derived from the training time points
func (o *Options) Resolve(t []time.Time) *Options {
	if o == nil {
		o = NewDefaultOptions()
	}
	res := o.Copy()
	if res.ChangepointOptions.Auto {
		res.ChangepointOptions.Changepoints = res.ChangepointOptions.GenerateAutoChangepoints(t)
		res.ChangepointOptions.Auto = false
	}
	if res.SeasonalityOptions.Auto {
		res.SeasonalityOptions.SeasonalityConfigs = AutoConfigs(t)
		res.SeasonalityOptions.Auto = false
	}
	return res
}
