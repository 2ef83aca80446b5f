package forecaster

import (
	"bytes"
	"testing"

	"github.com/augur-forecast/augur/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelTablePrint(t *testing.T) {
	testData := map[string]struct {
		numDays  int
		expected []string
	}{
		"constant uncertainty": {
			numDays:  2,
			expected: []string{"Series: Forecast:", "Uncertainty: constant"},
		},
		"forecasted uncertainty": {
			numDays:  30,
			expected: []string{"Series: Forecast:", "Uncertainty: Forecast:", "Series: Weights:"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tSeries := timedataset.GenerateDays(testStart, td.numDays)
			y := timedataset.GenerateLinearY(td.numDays, 1, 2).Add(timedataset.GenerateNoise(td.numDays, 0.5, 1))

			f, err := New(nil)
			require.Nil(t, err)
			require.Nil(t, f.Fit(tSeries, y))

			m, err := f.Model()
			require.Nil(t, err)

			var buf bytes.Buffer
			require.Nil(t, m.TablePrint(&buf))
			for _, s := range td.expected {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
