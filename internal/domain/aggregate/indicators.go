package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nmep/dashboard/internal/domain/synthetic"
)

// Band is a map color band for an incidence value.
type Band struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Incidence bands, per 1,000 population, highest first.
var burdenBands = []struct {
	min  float64
	band Band
}{
	{350, Band{"very_high", "#7f1d1d"}},
	{250, Band{"high", "#dc2626"}},
	{150, Band{"moderate", "#f97316"}},
	{50, Band{"low", "#facc15"}},
	{0, Band{"very_low", "#16a34a"}},
}

// ClassifyBurden returns the color band for an annual incidence per 1,000.
func ClassifyBurden(incidence float64) Band {
	for _, b := range burdenBands {
		if incidence >= b.min {
			return b.band
		}
	}
	return burdenBands[len(burdenBands)-1].band
}

// Completeness is the reporting performance of one state.
type Completeness struct {
	StateCode    string  `json:"state_code"`
	Facilities   int     `json:"facilities"`
	Reported     int     `json:"reported"`
	OnTime       int     `json:"on_time"`
	Completeness float64 `json:"completeness"` // percent reported
	Timeliness   float64 `json:"timeliness"`   // percent of reports on time
}

// ReportingCompleteness summarizes facility reports per state, lowest
// completeness first so gaps surface at the top.
func ReportingCompleteness(reports []synthetic.FacilityReport) []Completeness {
	byState := make(map[string]*Completeness)
	for _, r := range reports {
		c, ok := byState[r.StateCode]
		if !ok {
			c = &Completeness{StateCode: r.StateCode}
			byState[r.StateCode] = c
		}
		c.Facilities++
		if r.Reported {
			c.Reported++
		}
		if r.OnTime {
			c.OnTime++
		}
	}
	out := make([]Completeness, 0, len(byState))
	for _, c := range byState {
		c.Completeness = Percent(float64(c.Reported), float64(c.Facilities))
		c.Timeliness = Percent(float64(c.OnTime), float64(c.Reported))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completeness != out[j].Completeness {
			return out[i].Completeness < out[j].Completeness
		}
		return out[i].StateCode < out[j].StateCode
	})
	return out
}

// FundingSummary totals the budget lines of one funding source.
type FundingSummary struct {
	Source     string          `json:"source"`
	Allocated  decimal.Decimal `json:"allocated"`
	Disbursed  decimal.Decimal `json:"disbursed"`
	Expended   decimal.Decimal `json:"expended"`
	Absorption decimal.Decimal `json:"absorption"` // expended as a percent of disbursed
}

// BudgetSummary totals budget lines per funding source in first-seen order,
// followed by a grand total row with Source "Total".
func BudgetSummary(lines []synthetic.BudgetLine) []FundingSummary {
	var order []string
	bySource := make(map[string]*FundingSummary)
	total := &FundingSummary{Source: "Total"}
	for _, l := range lines {
		s, ok := bySource[l.Source]
		if !ok {
			s = &FundingSummary{Source: l.Source}
			bySource[l.Source] = s
			order = append(order, l.Source)
		}
		for _, acc := range []*FundingSummary{s, total} {
			acc.Allocated = acc.Allocated.Add(l.Allocated)
			acc.Disbursed = acc.Disbursed.Add(l.Disbursed)
			acc.Expended = acc.Expended.Add(l.Expended)
		}
	}
	out := make([]FundingSummary, 0, len(order)+1)
	for _, src := range order {
		out = append(out, withAbsorption(*bySource[src]))
	}
	return append(out, withAbsorption(*total))
}

var hundred = decimal.NewFromInt(100)

func withAbsorption(s FundingSummary) FundingSummary {
	if s.Disbursed.IsZero() {
		s.Absorption = decimal.Zero
		return s
	}
	s.Absorption = s.Expended.Mul(hundred).Div(s.Disbursed).Round(1)
	return s
}
