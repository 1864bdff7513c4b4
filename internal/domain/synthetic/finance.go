package synthetic

import (
	"github.com/shopspring/decimal"
)

// FundingSources lists the programme's funders.
var FundingSources = []string{
	"Government of Nigeria",
	"Global Fund",
	"US President's Malaria Initiative",
	"World Bank",
}

// Interventions lists the budgeted programme areas.
var Interventions = []string{
	"ITN distribution",
	"Seasonal malaria chemoprevention",
	"Case management",
	"Indoor residual spraying",
	"Surveillance and M&E",
	"Programme management",
}

// BudgetLine is one funder's allocation to one intervention, in naira.
type BudgetLine struct {
	Source       string          `json:"source"`
	Intervention string          `json:"intervention"`
	Allocated    decimal.Decimal `json:"allocated"`
	Disbursed    decimal.Decimal `json:"disbursed"`
	Expended     decimal.Decimal `json:"expended"`
}

// BudgetLines returns one line per funding source and intervention.
// Disbursed never exceeds allocated and expended never exceeds disbursed.
func BudgetLines(src *Source) []BudgetLine {
	out := make([]BudgetLine, 0, len(FundingSources)*len(Interventions))
	for _, fs := range FundingSources {
		for _, iv := range Interventions {
			allocated := decimal.NewFromFloat(src.Between(200e6, 5e9)).Round(2)
			disbursed := allocated.Mul(decimal.NewFromFloat(src.Between(0.55, 1))).Truncate(2)
			expended := disbursed.Mul(decimal.NewFromFloat(src.Between(0.6, 1))).Truncate(2)
			out = append(out, BudgetLine{
				Source:       fs,
				Intervention: iv,
				Allocated:    allocated,
				Disbursed:    disbursed,
				Expended:     expended,
			})
		}
	}
	return out
}
