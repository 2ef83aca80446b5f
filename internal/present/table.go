package present

import (
	"sort"

	"github.com/augur-forecast/augur/internal/engine"
)

// TableRow is one displayed forecast row. Index is the position of the row in the ascending
// result.
type TableRow struct {
	Index     int     `json:"index"`
	DS        string  `json:"ds"`
	YHat      float64 `json:"yhat"`
	YHatLower float64 `json:"yhat_lower"`
	YHatUpper float64 `json:"yhat_upper"`
}

// Table returns the result rows sorted by ds descending
func Table(result *engine.ForecastResult) []TableRow {
	rows := result.Rows()
	format := DateFormatter(rows)

	table := make([]TableRow, len(rows))
	for i, r := range rows {
		table[i] = TableRow{
			Index:     i,
			DS:        format(r.DS),
			YHat:      r.YHat,
			YHatLower: r.YHatLower,
			YHatUpper: r.YHatUpper,
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		return rows[table[i].Index].DS.After(rows[table[j].Index].DS)
	})
	return table
}
