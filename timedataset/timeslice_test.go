package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice TimeSlice
		start  time.Time
		end    time.Time
		span   time.Duration
	}{
		"nil input": {},
		"valid": {
			tSlice: TimeSlice(GenerateDays(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 3)),
			start:  time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			end:    time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
			span:   48 * time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.start, td.tSlice.StartTime())
			assert.Equal(t, td.end, td.tSlice.EndTime())
			assert.Equal(t, td.span, td.tSlice.Span())
		})
	}
}

func TestEstimateFreq(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Duration
		err      error
	}{
		"estimate with nil slice": {
			tSlice: nil,
			err:    ErrCannotInferFreq,
		},
		"consistent frequencies": {
			tSlice:   TimeSlice(GenerateDays(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 3)),
			expected: 24 * time.Hour,
		},
		"most common wins": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 1, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 2, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 2, 0, 0, 0, time.UTC),
			}),
			expected: time.Hour,
		},
		"tie resolves to smallest": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 1, 0, 0, 0, time.UTC),
			}),
			expected: time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.tSlice.EstimateFreq()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestAllMidnight(t *testing.T) {
	days := TimeSlice(GenerateDays(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 5))
	assert.True(t, days.AllMidnight())

	withTime := append(TimeSlice{}, days...)
	withTime = append(withTime, time.Date(2024, 3, 6, 12, 30, 0, 0, time.UTC))
	assert.False(t, withTime.AllMidnight())
}
