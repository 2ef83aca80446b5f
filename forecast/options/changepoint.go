package options

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/augur-forecast/augur/feature"
	"github.com/augur-forecast/augur/forecast/util"
)

const (
	DefaultAutoNumChangepoints = 25
	DefaultAutoRange           = 0.8
)

// Changepoint describes a point in time that will change the ongoing trend
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{T: t, Name: name}
}

// ChangepointOptions configures the changepoint fit to either use auto-detection
// by evenly placing N changepoints in the first AutoRange fraction of the training points or
// to use explicitly provided changepoints. Auto-detection relies on the regularization
// parameter to remove changepoints that would otherwise overfit.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	EnableBias          bool          `json:"enable_bias"`
	EnableGrowth        bool          `json:"enable_growth"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	AutoRange           float64       `json:"auto_range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		EnableGrowth:        true,
		Auto:                false,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		AutoRange:           DefaultAutoRange,
	}
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
		fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	}
	if c.Auto {
		noCfg = fmt.Sprintf(" Auto(%d)", c.AutoNumChangepoints)
	}
	fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg)
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T)
	}
	return tbl.Flush()
}

// GenerateAutoChangepoints places changepoints on evenly spaced training points within the first
// AutoRange fraction of the history. The number of changepoints is reduced when there are not
// enough points to hold them. Returns nil if auto-detection is disabled.
func (c ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if !c.Auto {
		return nil
	}

	n := c.AutoNumChangepoints
	if n <= 0 {
		n = DefaultAutoNumChangepoints
	}
	autoRange := c.AutoRange
	if autoRange <= 0 || autoRange > 1 {
		autoRange = DefaultAutoRange
	}

	histSize := int(math.Floor(float64(len(t)) * autoRange))
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}

	chpts := make([]Changepoint, 0, n)
	step := float64(histSize-1) / float64(n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(step * float64(i)))
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(i-1), t[idx]))
	}
	return chpts
}

// GenerateFeatures creates the bias and slope features of each changepoint. Slopes are expressed
// in units of the training window so they share a scale with the linear growth feature.
// Changepoints outside of the training window are skipped.
func (c ChangepointOptions) GenerateFeatures(chpts []Changepoint, t []time.Time, trainStartTime, trainEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	window := trainEndTime.Sub(trainStartTime).Seconds()
	if window <= 0 {
		return feat
	}

	for i, chpt := range chpts {
		if chpt.T.After(trainEndTime) || chpt.T.Before(trainStartTime) {
			continue
		}

		chpntName := strconv.Itoa(i)
		if chpt.Name != "" {
			chpntName = chpt.Name
		}

		bias := make([]float64, len(t))
		slope := make([]float64, len(t))
		for j, tPnt := range t {
			if tPnt.Before(chpt.T) {
				continue
			}
			bias[j] = 1.0
			slope[j] = tPnt.Sub(chpt.T).Seconds() / window
		}

		if c.EnableBias {
			feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompBias), bias)
		}
		if c.EnableGrowth {
			feat.Set(feature.NewChangepoint(chpntName, feature.ChangepointCompSlope), slope)
		}
	}
	return feat
}
