package feature

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthGenerate(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)

	tSeries := []time.Time{start, start.AddDate(0, 0, 2), end, end.AddDate(0, 0, 2)}
	epoch := NewTime("epoch").Generate(tSeries)

	testData := map[string]struct {
		feat     *Growth
		start    time.Time
		end      time.Time
		expected []float64
	}{
		"intercept": {
			feat:     Intercept(),
			start:    start,
			end:      end,
			expected: []float64{1, 1, 1, 1},
		},
		"linear extends past training": {
			feat:     Linear(),
			start:    start,
			end:      end,
			expected: []float64{0, 0.5, 1, 1.5},
		},
		"linear with empty window": {
			feat:     Linear(),
			start:    start,
			end:      start,
			expected: []float64{0, 0, 0, 0},
		},
		"unknown growth": {
			feat:     NewGrowth("quartic"),
			start:    start,
			end:      end,
			expected: []float64{0, 0, 0, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.feat.Generate(epoch, td.start, td.end)
			assert.InDeltaSlice(t, td.expected, res, 1e-9)
		})
	}
}

func TestGrowthUnmarshalJSON(t *testing.T) {
	out, err := json.Marshal(Linear().Decode())
	require.Nil(t, err)

	var res Growth
	require.Nil(t, json.Unmarshal(out, &res))
	assert.Equal(t, GrowthLinear, res.Name)
	assert.Equal(t, FeatureTypeGrowth, res.Type())
}
