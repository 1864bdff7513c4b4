package synthetic

import (
	"math"
	"sort"
	"time"

	"github.com/nmep/dashboard/internal/domain/reference"
)

// EpidemicThreshold is the multiple of the weekly baseline above which a
// state's week raises an alert.
const EpidemicThreshold = 1.5

// Alert severities.
const (
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
)

// OutbreakAlert marks a state whose cases this week exceed the epidemic
// threshold.
type OutbreakAlert struct {
	StateCode string  `json:"state_code"`
	StateName string  `json:"state_name"`
	Week      string  `json:"week"`
	Baseline  float64 `json:"baseline"`
	Observed  float64 `json:"observed"`
	Threshold float64 `json:"threshold"`
	Ratio     float64 `json:"ratio"`
	Severity  string  `json:"severity"`
}

// AlertSeverity classifies an observed/baseline ratio above threshold.
func AlertSeverity(ratio float64) string {
	if ratio > 2 {
		return SeverityHigh
	}
	return SeverityModerate
}

// OutbreakAlerts checks the week containing asOf for every state and returns
// the alerts, highest ratio first.
func OutbreakAlerts(src *Source, states []reference.State, asOf time.Time) []OutbreakAlert {
	week := Label(Weekly, periodStart(Weekly, asOf))
	alerts := []OutbreakAlert{}
	for _, st := range states {
		baseline := math.Round(EstimateCases(st.Population, BurdenScalar(st)) / 52)
		if baseline == 0 {
			continue
		}
		factor := src.Between(0.7, 1.4)
		if src.Chance(0.15) {
			factor = src.Between(1.6, 2.8)
		}
		observed := math.Round(baseline * factor)
		threshold := math.Round(baseline * EpidemicThreshold)
		if observed <= threshold {
			continue
		}
		ratio := round2Signed(observed / baseline)
		alerts = append(alerts, OutbreakAlert{
			StateCode: st.Code,
			StateName: st.Name,
			Week:      week,
			Baseline:  baseline,
			Observed:  observed,
			Threshold: threshold,
			Ratio:     ratio,
			Severity:  AlertSeverity(ratio),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Ratio > alerts[j].Ratio })
	return alerts
}
