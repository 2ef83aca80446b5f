package forecaster

import (
	"errors"

	"github.com/augur-forecast/augur/feature"
	"github.com/augur-forecast/augur/forecast/options"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultResidualWindow = 100
	DefaultIntervalWidth  = 0.8
)

var (
	ErrInvalidIntervalWidth  = errors.New("interval width must be between 0 and 1 exclusive")
	ErrNegativeResidualWindow = errors.New("residual window must be non-negative")
)

// OutlierOptions configures the iterative removal of outliers from the training data based on
// the residual of each fit
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

// NewOutlierOptions returns a default set of outlier options
func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures the series fit, the uncertainty fit and how the uncertainty interval is
// derived from the series residual
type Options struct {
	SeriesOptions   *options.Options `json:"series_options"`
	ResidualOptions *options.Options `json:"residual_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options"`

	// ResidualWindow is the number of residual points used to compute each rolling standard
	// deviation. It is limited to a quarter of the residual size.
	ResidualWindow int `json:"residual_window"`

	// IntervalWidth is the probability mass covered by the uncertainty interval
	IntervalWidth float64 `json:"interval_width"`
}

// NewDefaultOptions returns a default set of options with automatic seasonality for both the
// series and the uncertainty fit
func NewDefaultOptions() *Options {
	seriesOpt := options.NewDefaultOptions()
	seriesOpt.SeasonalityOptions.Auto = true

	residualOpt := options.NewDefaultOptions()
	residualOpt.SeasonalityOptions.Auto = true
	residualOpt.GrowthType = feature.GrowthLinear

	return &Options{
		SeriesOptions:   seriesOpt,
		ResidualOptions: residualOpt,
		ResidualWindow:  DefaultResidualWindow,
		IntervalWidth:   DefaultIntervalWidth,
	}
}

// Validate checks the interval configuration
func (o *Options) Validate() error {
	if o.IntervalWidth <= 0 || o.IntervalWidth >= 1 {
		return ErrInvalidIntervalWidth
	}
	if o.ResidualWindow < 0 {
		return ErrNegativeResidualWindow
	}
	return nil
}

// ZScore returns the standard normal quantile bounding the interval width
func (o *Options) ZScore() float64 {
	return distuv.UnitNormal.Quantile((1.0 + o.IntervalWidth) / 2.0)
}
