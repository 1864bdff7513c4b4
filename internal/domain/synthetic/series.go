package synthetic

import (
	"fmt"
	"math"
	"time"

	"github.com/nmep/dashboard/internal/domain/reference"
)

// Granularity of a time series.
type Granularity string

const (
	Monthly Granularity = "monthly"
	Weekly  Granularity = "weekly"
)

// Default window lengths.
const (
	DefaultMonthlyWindow = 24
	DefaultWeeklyWindow  = 52
)

// Season marks the high-transmission part of the year. Start and End are
// inclusive month (1-12) or ISO week (1-53) numbers. Start > End wraps across
// the year end.
type Season struct {
	Start  int
	End    int
	Peak   float64
	Trough float64
}

// Contains reports whether period-of-year p falls inside the season.
func (s Season) Contains(p int) bool {
	if s.Start <= s.End {
		return p >= s.Start && p <= s.End
	}
	return p >= s.Start || p <= s.End
}

// Factor returns the seasonal multiplier for period-of-year p.
func (s Season) Factor(p int) float64 {
	if s.Contains(p) {
		return s.Peak
	}
	return s.Trough
}

// Line is one named value in every point of a series.
type Line struct {
	Name  string
	Base  float64
	Phase float64
}

// SeriesConfig describes a generated series.
type SeriesConfig struct {
	Granularity Granularity
	Window      int
	End         time.Time
	Lines       []Line
	Season      Season
	Jitter      float64 // relative amplitude of the trigonometric wobble
	Trend       float64 // fractional change per period
}

// Point is one period of a series.
type Point struct {
	Period string             `json:"period"`
	Start  time.Time          `json:"start"`
	Values map[string]float64 `json:"values"`
}

// Jitter returns the deterministic wobble for period index i. It stays in
// [-1,1] and depends only on i and phase.
func Jitter(i int, phase float64) float64 {
	x := float64(i)
	return math.Sin(x*0.9+phase) * math.Cos(x*0.37+phase/2)
}

// Series generates cfg.Window points ending at the period containing cfg.End.
// Points are in chronological order with unique labels.
func Series(cfg SeriesConfig) []Point {
	if cfg.Window <= 0 {
		return []Point{}
	}
	anchor := periodStart(cfg.Granularity, cfg.End)
	points := make([]Point, cfg.Window)
	for i := 0; i < cfg.Window; i++ {
		start := shift(cfg.Granularity, anchor, i-(cfg.Window-1))
		season := cfg.Season.Factor(periodOfYear(cfg.Granularity, start))
		trend := 1 + cfg.Trend*float64(i)
		values := make(map[string]float64, len(cfg.Lines))
		for _, l := range cfg.Lines {
			v := l.Base * season * trend * (1 + cfg.Jitter*Jitter(i, l.Phase))
			values[l.Name] = math.Max(0, round1(v))
		}
		points[i] = Point{
			Period: Label(cfg.Granularity, start),
			Start:  start,
			Values: values,
		}
	}
	return points
}

// Label formats the display label of the period starting at t.
func Label(g Granularity, t time.Time) string {
	if g == Weekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return t.Format("Jan 2006")
}

func periodStart(g Granularity, t time.Time) time.Time {
	t = t.UTC()
	if g == Weekly {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func shift(g Granularity, anchor time.Time, n int) time.Time {
	if g == Weekly {
		return anchor.AddDate(0, 0, 7*n)
	}
	return anchor.AddDate(0, n, 0)
}

func periodOfYear(g Granularity, t time.Time) int {
	if g == Weekly {
		_, week := t.ISOWeek()
		return week
	}
	return int(t.Month())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RainySeason is the May-October transmission peak in monthly terms.
var RainySeason = Season{Start: 5, End: 10, Peak: 1.6, Trough: 0.7}

// RainySeasonWeeks is RainySeason expressed in ISO weeks.
var RainySeasonWeeks = Season{Start: 18, End: 44, Peak: 1.5, Trough: 0.75}

// National incidence per 1,000 population per month at a neutral season.
const baseMonthlyIncidence = 25.0

// MonthlyIncidence returns 24 months of incidence per 1,000 for the nation
// and each geopolitical zone.
func MonthlyIncidence(end time.Time) []Point {
	lines := []Line{{Name: "national", Base: baseMonthlyIncidence, Phase: 0}}
	for i, zone := range reference.Zones() {
		m, _ := reference.ZoneMultiplier(zone)
		lines = append(lines, Line{Name: zone, Base: baseMonthlyIncidence * m, Phase: float64(i+1) * 0.7})
	}
	return Series(SeriesConfig{
		Granularity: Monthly,
		Window:      DefaultMonthlyWindow,
		End:         end,
		Lines:       lines,
		Season:      RainySeason,
		Jitter:      0.12,
		Trend:       -0.004,
	})
}

// Series names produced by WeeklyTesting.
const (
	LineTested     = "tested"
	LineConfirmed  = "confirmed"
	LinePositivity = "positivity"
)

// WeeklyTesting returns 52 weeks of national testing volume, confirmed cases
// and test positivity (percent).
func WeeklyTesting(end time.Time) []Point {
	points := Series(SeriesConfig{
		Granularity: Weekly,
		Window:      DefaultWeeklyWindow,
		End:         end,
		Lines: []Line{
			{Name: LineTested, Base: 180000, Phase: 0.3},
			{Name: LinePositivity, Base: 30, Phase: 1.1},
		},
		Season: RainySeasonWeeks,
		Jitter: 0.08,
		Trend:  0.002,
	})
	for _, p := range points {
		pos := math.Min(p.Values[LinePositivity], 100)
		p.Values[LinePositivity] = pos
		p.Values[LineConfirmed] = math.Round(p.Values[LineTested] * pos / 100)
	}
	return points
}
