package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/augur-forecast/augur/feature"
	"github.com/augur-forecast/augur/forecast/util"
	"github.com/augur-forecast/augur/timedataset"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd  = errors.New("event start time is after end time")
	ErrUnsetTime      = errors.New("unset event start or end time")
	ErrNoEventName    = errors.New("no event name")
	ErrUnknownCountry = errors.New("unknown holiday country")
)

var supportedHolidays = map[string][]*cal.Holiday{
	"us": us.Holidays,
	"de": de.Holidays,
}

// Event represents a time span to model separately as a bias. Events sharing a name are modeled
// by a single feature.
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Holiday returns one day long events for each observed occurrence of the holiday between start
// and end inclusive, extended by durBefore and durAfter. All occurrences share the holiday name.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	var events []Event
	for i := start.Year(); i <= end.Year(); i++ {
		_, observed := hol.Calc(i)
		if observed.IsZero() {
			continue
		}
		day := time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, start.Location())

		if day.Before(start.Truncate(24*time.Hour)) || day.After(end) {
			continue
		}
		events = append(events, Event{
			Name:  strings.ReplaceAll(hol.Name, " ", "_"),
			Start: day.Add(-durBefore),
			End:   day.Add(24 * time.Hour).Add(durAfter),
		})
	}
	return events
}

// CountryHolidays returns the holiday events of a supported country code between start and end
func CountryHolidays(country string, start, end time.Time) ([]Event, error) {
	hols, exists := supportedHolidays[strings.ToLower(country)]
	if !exists {
		return nil, fmt.Errorf("%q, %w", country, ErrUnknownCountry)
	}
	var events []Event
	for _, hol := range hols {
		events = append(events, Holiday(hol, start, end, 0, 0)...)
	}
	return events, nil
}

// SupportedCountries lists the country codes accepted for holiday events
func SupportedCountries() []string {
	countries := make([]string, 0, len(supportedHolidays))
	for c := range supportedHolidays {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// EventOptions lists explicit events and countries whose holidays are modeled as events
type EventOptions struct {
	Events    []Event  `json:"events"`
	Countries []string `json:"countries"`
}

// GenerateFeatures returns a 0/1 mask per event name over t. Holidays of the configured countries
// are generated over the span of t.
func (e EventOptions) GenerateFeatures(t []time.Time) *feature.Set {
	eFeat := feature.NewSet()
	if len(t) == 0 {
		return eFeat
	}

	ts := timedataset.TimeSlice(t)
	events := append([]Event{}, e.Events...)
	for _, country := range e.Countries {
		hols, err := CountryHolidays(country, ts.StartTime(), ts.EndTime())
		if err != nil {
			slog.Warn("not modelling holidays", "country", country, "error", err.Error())
			continue
		}
		events = append(events, hols...)
	}

	masks := make(map[string][]float64)
	for _, ev := range events {
		if err := ev.Valid(); err != nil {
			slog.Warn("not separately modelling invalid event", "name", ev.Name, "error", err.Error())
			continue
		}
		name := strings.ReplaceAll(ev.Name, " ", "_")
		mask, exists := masks[name]
		if !exists {
			mask = make([]float64, len(t))
			masks[name] = mask
		}
		for i, tPnt := range t {
			if !tPnt.Before(ev.Start) && tPnt.Before(ev.End) {
				mask[i] = 1.0
			}
		}
	}

	for name, mask := range masks {
		if err := eFeat.Set(feature.NewEvent(name), mask); err != nil {
			slog.Warn("unable to register event mask", "name", name, "error", err.Error())
		}
	}
	return eFeat
}

func (e EventOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(e.Events) > 0 {
		noCfg = ""
		if _, err := fmt.Fprintf(tbl, "%s%sName\tStart\tEnd\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
	}
	if len(e.Countries) > 0 {
		if len(e.Events) == 0 {
			noCfg = ""
		}
		noCfg += " Holidays(" + strings.Join(e.Countries, ",") + ")"
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	for _, ev := range e.Events {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			ev.Name, ev.Start, ev.End); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
