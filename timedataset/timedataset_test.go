package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnivariateDataset(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		y        []float64
		expected *TimeDataset
		err      error
	}{
		"no training data": {
			err: ErrNoTrainingData,
		},
		"length mismatch": {
			y:   []float64{1},
			err: ErrDatasetLenMismatch,
		},
		"non increasing time": {
			t: []time.Time{
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"duplicate time": {
			t: []time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"valid": {
			t: []time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			y: []float64{1, 2},
			expected: &TimeDataset{
				T: []time.Time{
					time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				},
				Y: []float64{1, 2},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := NewUnivariateDataset(td.t, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, ds)
			assert.Equal(t, len(td.y), ds.Len())
		})
	}
}

func TestCopy(t *testing.T) {
	tSeries := GenerateDays(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	ds, err := NewUnivariateDataset(tSeries, []float64{0, 1})
	require.Nil(t, err)

	nextDs := ds.Copy()
	require.Equal(t, ds, nextDs)

	ds.Y[0] = 10
	assert.Equal(t, 0.0, nextDs.Y[0])
}

func TestExclude(t *testing.T) {
	tSeries := GenerateDays(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 4)
	ds, err := NewUnivariateDataset(tSeries, []float64{0, 1, 2, 3})
	require.Nil(t, err)

	res := ds.Exclude([]int{1, 3})
	assert.Equal(t, []float64{0, 2}, res.Y)
	assert.Equal(t, []time.Time{tSeries[0], tSeries[2]}, res.T)
	assert.Equal(t, 4, ds.Len())
}
