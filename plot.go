package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/augur-forecast/augur/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const plotTimeLayout = "2006-01-02 15:04:05"

var ErrCannotInferInterval = errors.New("cannot infer interval from training data time")

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// plotted as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Trigger: "axis",
			},
		),
	)

	line.SetXAxis(timeLabels(t))
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line.AddSeries(series, lineData(y[i]))
	}
	return line
}

// LineForecaster generates an echart line chart for a fit result plotting the training values
// along with the forecasted, upper, lower values of the fit and of the forecast horizon.
func LineForecaster(trainingData *timedataset.TimeDataset, fitRes, forecastRes *Results) *charts.Line {
	t := make([]time.Time, 0, len(fitRes.T)+len(forecastRes.T))
	t = append(t, fitRes.T...)
	t = append(t, forecastRes.T...)

	pad := make([]float64, len(forecastRes.T))
	for i := range pad {
		pad[i] = math.NaN()
	}

	actual := append(append([]float64{}, trainingData.Y...), pad...)
	yhat := append(append([]float64{}, fitRes.Forecast...), forecastRes.Forecast...)
	upper := append(append([]float64{}, fitRes.Upper...), forecastRes.Upper...)
	lower := append(append([]float64{}, fitRes.Lower...), forecastRes.Lower...)

	return LineTSeries(
		"Forecast Fit",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		t,
		[][]float64{actual, yhat, upper, lower},
	)
}

// PlotOpts sets the horizon to forecast out. By default will use 10% of the training size using
// the estimated sampling interval of the training data.
type PlotOpts struct {
	HorizonCnt      int
	HorizonInterval time.Duration
}

// PlotFit uses the Apache Echarts library to write an html page showing the resulting fit,
// model components, and fit residual
func (f *Forecaster) PlotFit(w io.Writer, opt *PlotOpts) error {
	td := f.TrainingData()
	if td == nil || len(td.T) < 2 {
		return ErrCannotInferInterval
	}

	horizonInterval, err := timedataset.TimeSlice(td.T).EstimateFreq()
	if err != nil {
		return fmt.Errorf("%w, %w", ErrCannotInferInterval, err)
	}
	horizonCnt := len(td.T) / 10
	if opt != nil {
		horizonCnt = opt.HorizonCnt
		horizonInterval = opt.HorizonInterval
	}
	if horizonCnt < 1 {
		horizonCnt = 1
	}

	lastTime := td.T[len(td.T)-1]
	horizon := make([]time.Time, 0, horizonCnt)
	for i := 0; i < horizonCnt; i++ {
		horizon = append(horizon, lastTime.Add(time.Duration(i+1)*horizonInterval))
	}

	forecastRes, err := f.Predict(horizon)
	if err != nil {
		return fmt.Errorf("unable to predict with horizon, %w", err)
	}

	t := append(append([]time.Time{}, td.T...), horizon...)

	zpad := make([]float64, horizonCnt)
	for i := range zpad {
		zpad[i] = math.NaN()
	}
	residuals := append(f.Residuals(), zpad...)
	trendComp := append(f.TrendComponent(), forecastRes.SeriesComponents.Trend...)
	seasonComp := append(f.SeasonalityComponent(), forecastRes.SeriesComponents.Seasonality...)

	page := components.NewPage()
	page.AddCharts(
		LineForecaster(td, f.FitResults(), forecastRes),
		LineTSeries(
			"Forecast Components",
			[]string{"Trend", "Seasonality"},
			t,
			[][]float64{trendComp, seasonComp},
		),
		LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			t,
			[][]float64{residuals},
		),
	)
	return page.Render(w)
}

func timeLabels(t []time.Time) []string {
	labels := make([]string, len(t))
	for i, tPnt := range t {
		labels[i] = tPnt.UTC().Format(plotTimeLayout)
	}
	return labels
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}
