package present

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/series"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testResult() *engine.ForecastResult {
	rows := []engine.Row{
		{DS: testStart, YHat: 1, YHatLower: 0.5, YHatUpper: 1.5},
		{DS: testStart.AddDate(0, 0, 1), YHat: 2.25, YHatLower: 1.75, YHatUpper: 2.75},
		{DS: testStart.AddDate(0, 0, 2), YHat: 3.1, YHatLower: 2.6, YHatUpper: 3.6},
		{DS: testStart.AddDate(0, 0, 3), YHat: 4.000000001, YHatLower: 3, YHatUpper: 5},
	}
	history := []series.Row{
		{DS: testStart, Y: 1.1},
		{DS: testStart.AddDate(0, 0, 1), Y: 2.2},
	}
	return engine.NewForecastResult(rows, history, 2, "y ~ +1.00*growth_intercept")
}

func TestDateFormatter(t *testing.T) {
	days := []engine.Row{{DS: testStart}, {DS: testStart.AddDate(0, 0, 1)}}
	assert.Equal(t, "2024-01-02", DateFormatter(days)(days[1].DS))

	hours := []engine.Row{{DS: testStart}, {DS: testStart.Add(time.Hour)}}
	assert.Equal(t, "2024-01-01 01:00:00", DateFormatter(hours)(hours[1].DS))
	assert.Equal(t, "2024-01-01 00:00:00", DateFormatter(hours)(hours[0].DS))
}

func TestTable(t *testing.T) {
	res := testResult()
	table := Table(res)
	require.Len(t, table, 4)

	expectedIdx := []int{3, 2, 1, 0}
	for i, row := range table {
		assert.Equal(t, expectedIdx[i], row.Index)
	}
	assert.Equal(t, "2024-01-04", table[0].DS)
	assert.Equal(t, 4.000000001, table[0].YHat)
	assert.Equal(t, "2024-01-01", table[3].DS)

	// the result keeps its ascending order
	assert.Equal(t, testStart, res.Rows()[0].DS)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, testResult()))

	expected := strings.Join([]string{
		",ds,yhat,yhat_lower,yhat_upper",
		"0,2024-01-01,1,0.5,1.5",
		"1,2024-01-02,2.25,1.75,2.75",
		"2,2024-01-03,3.1,2.6,3.6",
		"3,2024-01-04,4.000000001,3,5",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	res := testResult()
	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, res))

	rows, err := ReadCSV(&buf)
	require.Nil(t, err)
	require.Len(t, rows, res.Len())
	for i, r := range res.Rows() {
		assert.True(t, r.DS.Equal(rows[i].DS))
		assert.InDelta(t, r.YHat, rows[i].YHat, 1e-12)
		assert.InDelta(t, r.YHatLower, rows[i].YHatLower, 1e-12)
		assert.InDelta(t, r.YHatUpper, rows[i].YHatUpper, 1e-12)
	}
}

func TestCSVRoundTripTimestamps(t *testing.T) {
	rows := []engine.Row{
		{DS: testStart.Add(6 * time.Hour), YHat: 1},
		{DS: testStart.Add(12 * time.Hour), YHat: 2},
	}
	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, engine.NewForecastResult(rows, nil, 1, "")))
	assert.Contains(t, buf.String(), "2024-01-01 06:00:00")

	parsed, err := ReadCSV(&buf)
	require.Nil(t, err)
	assert.True(t, rows[1].DS.Equal(parsed[1].DS))
}

func TestReadCSVErrors(t *testing.T) {
	testData := map[string]struct {
		input string
		err   error
	}{
		"empty":          {input: "", err: ErrUnexpectedHeader},
		"wrong header":   {input: ",ds,y,lower,upper\n", err: ErrUnexpectedHeader},
		"missing column": {input: ",ds,yhat,yhat_lower,yhat_upper\n0,2024-01-01,1,2\n", err: ErrInvalidRecord},
		"bad date":       {input: ",ds,yhat,yhat_lower,yhat_upper\n0,yesterday,1,0,2\n", err: ErrInvalidRecord},
		"bad value":      {input: ",ds,yhat,yhat_lower,yhat_upper\n0,2024-01-01,one,0,2\n", err: ErrInvalidRecord},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(td.input))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, WriteXLSX(&buf, testResult()))

	f, err := excelize.OpenReader(&buf)
	require.Nil(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsxSheet}, f.GetSheetList())
	rows, err := f.GetRows(xlsxSheet)
	require.Nil(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"", "ds", "yhat", "yhat_lower", "yhat_upper"}, rows[0])
	assert.Equal(t, []string{"1", "2024-01-02", "2.25", "1.75", "2.75"}, rows[2])
}

func TestChart(t *testing.T) {
	res := testResult()
	line := Chart(res)
	require.Len(t, line.MultiSeries, 4)

	names := make([]string, len(line.MultiSeries))
	for i, s := range line.MultiSeries {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Lower", "Interval", "Forecast", "Actual"}, names)
	assert.Equal(t, bandStack, line.MultiSeries[0].Stack)
	assert.Equal(t, bandStack, line.MultiSeries[1].Stack)

	actual := line.MultiSeries[3].Data.([]opts.LineData)
	assert.Equal(t, 1.1, actual[0].Value)
	assert.Equal(t, "-", actual[3].Value)

	var buf bytes.Buffer
	require.Nil(t, RenderChart(&buf, res))
	assert.Contains(t, buf.String(), "echarts")
	assert.Contains(t, buf.String(), "2024-01-04")
}
