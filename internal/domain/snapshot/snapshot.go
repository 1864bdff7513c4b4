// Package snapshot builds every synthetic dataset once and holds the result
// for the lifetime of the process. Consumers receive the *Snapshot
// explicitly; nothing here is a package-level singleton.
package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nmep/dashboard/internal/domain/aggregate"
	"github.com/nmep/dashboard/internal/domain/reference"
	"github.com/nmep/dashboard/internal/domain/synthetic"
)

// ErrUnknownCountry is returned for a country code missing from the
// reference table.
var ErrUnknownCountry = errors.New("unknown country")

// Options controls a build.
type Options struct {
	Seed        int64 // 0 picks a time-derived seed
	AsOf        time.Time
	Cases       int
	Facilities  int
	PPMVs       int
	OutlierBand float64
}

// DefaultOptions returns the sizes used by the server.
func DefaultOptions() Options {
	return Options{
		AsOf:        time.Now().UTC(),
		Cases:       500,
		Facilities:  300,
		PPMVs:       200,
		OutlierBand: synthetic.DefaultOutlierBand,
	}
}

// Snapshot is an immutable set of generated datasets.
type Snapshot struct {
	Seed       int64
	AsOf       time.Time
	Monthly    []synthetic.Point
	Weekly     []synthetic.Point
	Burden     []synthetic.BurdenEstimate
	Cases      []synthetic.CaseRecord
	Facilities []synthetic.FacilityReport
	PPMVs      []synthetic.PPMVRecord
	Outliers   []synthetic.OutlierResult
	Alerts     []synthetic.OutbreakAlert
	Budget     []synthetic.BudgetLine
}

// Build generates every dataset. Each dataset draws from its own stream
// derived from the effective seed so resizing one leaves the others intact.
func Build(opts Options) *Snapshot {
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	if opts.OutlierBand <= 0 {
		opts.OutlierBand = synthetic.DefaultOutlierBand
	}
	seed := synthetic.NewSource(opts.Seed).Seed()
	stream := func(k int64) *synthetic.Source { return synthetic.NewSource(seed + k) }
	states := reference.States().All()

	return &Snapshot{
		Seed:       seed,
		AsOf:       opts.AsOf,
		Monthly:    synthetic.MonthlyIncidence(opts.AsOf),
		Weekly:     synthetic.WeeklyTesting(opts.AsOf),
		Burden:     synthetic.Burden(states),
		Cases:      synthetic.CaseRecords(stream(1), opts.Cases, opts.AsOf),
		Facilities: synthetic.FacilityReports(stream(2), opts.Facilities, opts.AsOf),
		PPMVs:      synthetic.PPMVRegistry(stream(3), opts.PPMVs),
		Outliers:   synthetic.Outliers(stream(4), states, opts.OutlierBand),
		Alerts:     synthetic.OutbreakAlerts(stream(5), states, opts.AsOf),
		Budget:     synthetic.BudgetLines(stream(6)),
	}
}

// Summary renders the plaintext indicator context for a country. Nigeria
// gets the full sub-national picture; other countries get their headline
// indicators.
func (s *Snapshot) Summary(countryCode string) (string, error) {
	c, ok := reference.Countries().Lookup(strings.ToUpper(countryCode))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s (%s), population %d.\n", c.Name, c.Region, c.Population)
	fmt.Fprintf(&b, "Incidence: %.1f cases per 1,000 at risk. Mortality: %.1f deaths per 100,000. ITN coverage: %.0f%%.\n",
		c.Incidence, c.Mortality, c.ITNCoverage)
	if c.Code != "NG" {
		return b.String(), nil
	}

	if n := len(s.Monthly); n > 0 {
		last := s.Monthly[n-1]
		fmt.Fprintf(&b, "National monthly incidence (%s): %.1f per 1,000.\n", last.Period, last.Values["national"])
	}
	if n := len(s.Weekly); n > 0 {
		last := s.Weekly[n-1]
		fmt.Fprintf(&b, "Week %s: %.0f tested, %.0f confirmed, positivity %.1f%%.\n",
			last.Period, last.Values[synthetic.LineTested], last.Values[synthetic.LineConfirmed], last.Values[synthetic.LinePositivity])
	}

	top := aggregate.TopN(s.Burden, 5, func(e synthetic.BurdenEstimate) float64 { return e.Cases })
	names := make([]string, len(top))
	for i, e := range top {
		names[i] = fmt.Sprintf("%s (%.0f cases)", e.StateName, e.Cases)
	}
	fmt.Fprintf(&b, "Highest-burden states: %s.\n", strings.Join(names, ", "))

	high := 0
	for _, a := range s.Alerts {
		if a.Severity == synthetic.SeverityHigh {
			high++
		}
	}
	fmt.Fprintf(&b, "Outbreak alerts this week: %d (%d high severity).\n", len(s.Alerts), high)

	reported, onTime := 0, 0
	for _, f := range s.Facilities {
		if f.Reported {
			reported++
		}
		if f.OnTime {
			onTime++
		}
	}
	fmt.Fprintf(&b, "Facility reporting completeness: %.1f%%, timeliness %.1f%%.\n",
		aggregate.Percent(float64(reported), float64(len(s.Facilities))),
		aggregate.Percent(float64(onTime), float64(reported)))

	flagged := 0
	for _, o := range s.Outliers {
		if o.Flagged {
			flagged++
		}
	}
	fmt.Fprintf(&b, "Data quality: %d of %d LGAs flagged as outliers.\n", flagged, len(s.Outliers))

	if summary := aggregate.BudgetSummary(s.Budget); len(summary) > 0 {
		total := summary[len(summary)-1]
		fmt.Fprintf(&b, "Budget absorption: %s%% of disbursed funds expended.\n", total.Absorption.StringFixed(1))
	}
	return b.String(), nil
}
