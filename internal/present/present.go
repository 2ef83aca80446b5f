// Package present renders a forecast result as a chart, a table sorted by date descending and
// downloadable csv and xlsx files. Nothing in this package modifies the result.
package present

import (
	"time"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/timedataset"
)

const (
	CSVFileName     = "augur.csv"
	CSVContentType  = "text/csv"
	XLSXFileName    = "augur.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout     = time.DateOnly
	dateTimeLayout = time.DateTime
)

// Columns are the exported column names following the unlabeled index column
var Columns = []string{"ds", "yhat", "yhat_lower", "yhat_upper"}

// DateFormatter formats every date of rows as YYYY-MM-DD when they all fall on midnight and as
// YYYY-MM-DD HH:MM:SS otherwise
func DateFormatter(rows []engine.Row) func(time.Time) string {
	t := make([]time.Time, len(rows))
	for i, r := range rows {
		t[i] = r.DS.UTC()
	}
	layout := dateTimeLayout
	if timedataset.TimeSlice(t).AllMidnight() {
		layout = dateLayout
	}
	return func(t time.Time) string {
		return t.UTC().Format(layout)
	}
}
