package options

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/augur-forecast/augur/forecast/util"
	"github.com/augur-forecast/augur/timedataset"
)

const (
	LabelSeasDaily  = "daily"
	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"

	DefaultDailyOrders  = 4
	DefaultWeeklyOrders = 3
	DefaultYearlyOrders = 10

	PeriodDaily  = 24 * time.Hour
	PeriodWeekly = 7 * PeriodDaily
	PeriodYearly = time.Duration(365.25 * float64(PeriodDaily))
)

// SeasonalityOptions configures the number of seasonality components to fit for. When Auto is
// set the configs are derived from the training time points instead.
type SeasonalityOptions struct {
	SeasonalityConfigs []SeasonalityConfig `json:"seasonality_configs"`
	Auto               bool                `json:"auto"`
}

// NewDefaultSeasonalityOptions generates a default seasonality config with weekly and daily
// seasonal components
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{
		SeasonalityConfigs: []SeasonalityConfig{
			NewDailySeasonalityConfig(DefaultDailyOrders),
			NewWeeklySeasonalityConfig(DefaultWeeklyOrders),
		},
	}
}

func (s SeasonalityOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(s.SeasonalityConfigs) > 0 {
		noCfg = ""
		fmt.Fprintf(tbl, "%s%sName\tPeriod\tOrders\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	}
	fmt.Fprintf(w, "%s%sSeasonality:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg)
	for _, seasCfg := range s.SeasonalityConfigs {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			seasCfg.Name, seasCfg.Period, seasCfg.Orders)
	}
	return tbl.Flush()
}

// AutoConfigs derives seasonality configs from the span and sampling of the training time
// points. Weekly requires two weeks of history, yearly two years and daily requires sub-daily
// sampling over at least two days.
func AutoConfigs(t []time.Time) []SeasonalityConfig {
	ts := timedataset.TimeSlice(t)
	span := ts.Span()

	var cfgs []SeasonalityConfig
	if freq, err := ts.EstimateFreq(); err == nil && freq < PeriodDaily && span >= 2*PeriodDaily {
		cfgs = append(cfgs, NewDailySeasonalityConfig(DefaultDailyOrders))
	}
	if span >= 2*PeriodWeekly {
		cfgs = append(cfgs, NewWeeklySeasonalityConfig(DefaultWeeklyOrders))
	}
	if span >= 2*time.Duration(365*float64(PeriodDaily)) {
		cfgs = append(cfgs, NewYearlySeasonalityConfig(DefaultYearlyOrders))
	}
	return cfgs
}

// validConfigs returns a copy of the configs sorted by period dropping unnamed, empty and
// duplicate period configs. The config with the most orders wins for a duplicate period.
func (s SeasonalityOptions) validConfigs() []SeasonalityConfig {
	cfgs := make([]SeasonalityConfig, len(s.SeasonalityConfigs))
	copy(cfgs, s.SeasonalityConfigs)
	sort.Slice(cfgs, func(i, j int) bool {
		if cfgs[i].Period != cfgs[j].Period {
			return cfgs[i].Period < cfgs[j].Period
		}
		if cfgs[i].Orders != cfgs[j].Orders {
			return cfgs[i].Orders > cfgs[j].Orders
		}
		return cfgs[i].Name < cfgs[j].Name
	})

	valid := make([]SeasonalityConfig, 0, len(cfgs))
	var lastValidPeriod time.Duration
	for _, seasCfg := range cfgs {
		if seasCfg.Period > lastValidPeriod && seasCfg.Name != "" && seasCfg.Orders > 0 {
			valid = append(valid, seasCfg)
			lastValidPeriod = seasCfg.Period
		}
	}
	return valid
}

// SeasonalityConfig represents a single seasonality configuration to model. This will generate
// Fourier series of the specified period and number of orders. E.g. a period of 24*time.Hour
// with 3 orders will create 6 Fourier series of order 1, 2, 3 and for the sine/cosine components
// where order 1 will have a period of 1 day and order 2 will have a period of 12 hours.
type SeasonalityConfig struct {
	Name   string        `json:"name"`
	Orders int           `json:"orders"`
	Period time.Duration `json:"period"`
}

// NewSeasonalityConfig creates a new seasonality config given a name, period and orders
func NewSeasonalityConfig(name string, period time.Duration, orders int) SeasonalityConfig {
	if orders < 0 {
		orders = 0
	}

	return SeasonalityConfig{
		Name:   name,
		Orders: orders,
		Period: period,
	}
}

// NewDailySeasonalityConfig creates a daily seasonality config given a specified number of orders
func NewDailySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasDaily, PeriodDaily, orders)
}

// NewWeeklySeasonalityConfig creates a weekly seasonality config given a specified number of orders
func NewWeeklySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasWeekly, PeriodWeekly, orders)
}

// NewYearlySeasonalityConfig creates a yearly seasonality config given a specified number of orders
func NewYearlySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasYearly, PeriodYearly, orders)
}
