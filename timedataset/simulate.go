package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n timestamps spaced by interval ending right before the minute truncated
// time returned by nowFunc
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

// GenerateDays returns n consecutive daily timestamps starting at start
func GenerateDays(start time.Time, n int) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
	}
	return t
}

// Series is a synthetic value slice that can be composed in place
type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	for i := range s {
		if !t[i].Before(start) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func (s Series) MaskWithWeekend(t []time.Time) Series {
	for i := range s {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return Series(y)
}

// GenerateLinearY returns intercept + slope * i for each index
func GenerateLinearY(n int, intercept, slope float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = intercept + slope*float64(i)
	}
	return Series(y)
}

func GenerateWaveY(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	y := make([]float64, len(t))
	for i := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset))
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise scaled by noiseScale using a seeded source so runs are
// reproducible
func GenerateNoise(n int, noiseScale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, n)
	for i := range y {
		y[i] = r.NormFloat64() * noiseScale
	}
	return Series(y)
}

// GenerateChange returns a bias plus slope per day starting at the changepoint
func GenerateChange(t []time.Time, chpt time.Time, bias, slope float64) Series {
	y := make([]float64, len(t))
	for i := range t {
		if !t[i].Before(chpt) {
			y[i] = bias + slope*t[i].Sub(chpt).Hours()/24.0
		}
	}
	return Series(y)
}
