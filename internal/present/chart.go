package present

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	bandStack = "band"
	bandColor = "rgba(84, 112, 198, 0.25)"
)

// Chart plots yhat over ds with the shaded [yhat_lower, yhat_upper] band and the observed values
// over the historical part of the result
func Chart(result *engine.ForecastResult) *charts.Line {
	rows := result.Rows()
	format := DateFormatter(rows)

	labels := make([]string, len(rows))
	lower := make([]float64, len(rows))
	width := make([]float64, len(rows))
	yhat := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = format(r.DS)
		lower[i] = r.YHatLower
		width[i] = r.YHatUpper - r.YHatLower
		yhat[i] = r.YHat
	}

	actual := make([]float64, len(rows))
	observed := make(map[time.Time]float64)
	for _, h := range result.History() {
		observed[h.DS] = h.Y
	}
	for i, r := range rows {
		actual[i] = math.NaN()
		if v, ok := observed[r.DS]; ok {
			actual[i] = v
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Forecast",
			Subtitle: fmt.Sprintf("%d historical dates, %d day horizon", len(result.History()), result.Horizon()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Bottom: "0",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type: "inside",
		}),
	)

	line.SetXAxis(labels).
		AddSeries("Lower", lineData(lower),
			charts.WithLineChartOpts(opts.LineChart{Stack: bandStack, Symbol: "none"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "transparent"}),
		).
		AddSeries("Interval", lineData(width),
			charts.WithLineChartOpts(opts.LineChart{Stack: bandStack, Symbol: "none"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "transparent"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: bandColor}),
		).
		AddSeries("Forecast", lineData(yhat),
			charts.WithLineChartOpts(opts.LineChart{Symbol: "none"}),
		).
		AddSeries("Actual", lineData(actual),
			charts.WithLineChartOpts(opts.LineChart{Symbol: "circle"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "transparent"}),
		)
	return line
}

// RenderChart writes the chart as a standalone html document
func RenderChart(w io.Writer, result *engine.ForecastResult) error {
	return Chart(result).Render(w)
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
