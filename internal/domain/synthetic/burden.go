package synthetic

import (
	"github.com/nmep/dashboard/internal/domain/reference"
)

// Epidemiological constants applied to burden-scaled populations.
const (
	CasesPerCapita = 0.27   // annual cases per person at burden 1.0
	CaseFatality   = 0.0029 // deaths per case
)

// BurdenEstimate is the derived annual burden of one state.
type BurdenEstimate struct {
	StateCode  string  `json:"state_code"`
	StateName  string  `json:"state_name"`
	Zone       string  `json:"zone"`
	Population int64   `json:"population"`
	Burden     float64 `json:"burden"`
	Cases      float64 `json:"cases"`
	Deaths     float64 `json:"deaths"`
	Incidence  float64 `json:"incidence"` // per 1,000 population
}

// BurdenScalar combines the zone and state multipliers. Unknown zones count
// as 1.0.
func BurdenScalar(s reference.State) float64 {
	zone, ok := reference.ZoneMultiplier(s.Zone)
	if !ok {
		zone = 1
	}
	return zone * s.BurdenMultiplier
}

// EstimateCases returns annual cases for a population at the given burden.
func EstimateCases(population int64, burden float64) float64 {
	if population <= 0 || burden <= 0 {
		return 0
	}
	return float64(population) * burden * CasesPerCapita
}

// IncidencePer1000 returns cases per 1,000 population, or 0 for an empty
// population.
func IncidencePer1000(cases float64, population int64) float64 {
	if population <= 0 {
		return 0
	}
	return cases / float64(population) * 1000
}

// Burden derives one estimate per state, in input order.
func Burden(states []reference.State) []BurdenEstimate {
	out := make([]BurdenEstimate, len(states))
	for i, s := range states {
		b := BurdenScalar(s)
		cases := EstimateCases(s.Population, b)
		out[i] = BurdenEstimate{
			StateCode:  s.Code,
			StateName:  s.Name,
			Zone:       s.Zone,
			Population: s.Population,
			Burden:     round2(b),
			Cases:      float64(int64(cases)),
			Deaths:     float64(int64(cases * CaseFatality)),
			Incidence:  round1(IncidencePer1000(cases, s.Population)),
		}
	}
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
