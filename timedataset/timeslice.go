package timedataset

import (
	"math"
	"time"
)

// TimeSlice is an ordered set of timestamps
type TimeSlice []time.Time

// StartTime returns the first timestamp or the zero time if empty
func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

// EndTime returns the last timestamp or the zero time if empty
func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}
	return t[len(t)-1]
}

// Span is the duration between the first and last timestamp
func (t TimeSlice) Span() time.Duration {
	if len(t) < 2 {
		return 0
	}
	return t.EndTime().Sub(t.StartTime())
}

// EstimateFreq returns the most common delta between consecutive timestamps. Ties resolve to the
// smaller delta.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		frequencies[t[i].Sub(t[i-1])]++
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)
	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// AllMidnight returns true if every timestamp falls exactly on a day boundary
func (t TimeSlice) AllMidnight() bool {
	for _, ts := range t {
		if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 || ts.Nanosecond() != 0 {
			return false
		}
	}
	return true
}
