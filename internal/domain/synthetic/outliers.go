package synthetic

import (
	"math"

	"github.com/nmep/dashboard/internal/domain/reference"
)

// DefaultOutlierBand is the relative deviation tolerated before a report is
// flagged.
const DefaultOutlierBand = 0.3

// OutlierResult compares one LGA's reported monthly cases with the expected
// count.
type OutlierResult struct {
	StateCode string  `json:"state_code"`
	LGA       string  `json:"lga"`
	Expected  float64 `json:"expected"`
	Reported  float64 `json:"reported"`
	Deviation float64 `json:"deviation"`
	Flagged   bool    `json:"flagged"`
}

// ClassifyOutlier returns the relative deviation of reported from expected
// and whether it lies outside band. With nothing expected any positive report
// is flagged.
func ClassifyOutlier(expected, reported, band float64) (float64, bool) {
	if expected == 0 {
		return 0, reported > 0
	}
	dev := (reported - expected) / expected
	return round2Signed(dev), math.Abs(dev) > band
}

// Outliers builds one result per LGA of states. Most reports are perturbed
// within +-20% of expectation; about one in five gets a wider perturbation.
func Outliers(src *Source, states []reference.State, band float64) []OutlierResult {
	out := []OutlierResult{}
	for _, st := range states {
		if len(st.LGAs) == 0 {
			continue
		}
		monthly := EstimateCases(st.Population, BurdenScalar(st)) / 12
		per := math.Round(monthly / float64(len(st.LGAs)))
		for _, lga := range st.LGAs {
			noise := src.Between(-0.2, 0.2)
			if src.Chance(0.2) {
				noise = src.Between(-0.6, 0.8)
			}
			reported := math.Round(per * (1 + noise))
			dev, flagged := ClassifyOutlier(per, reported, band)
			out = append(out, OutlierResult{
				StateCode: st.Code,
				LGA:       lga,
				Expected:  per,
				Reported:  reported,
				Deviation: dev,
				Flagged:   flagged,
			})
		}
	}
	return out
}

func round2Signed(v float64) float64 {
	return math.Round(v*100) / 100
}
