package dashboard

import (
	"github.com/nmep/dashboard/internal/domain/aggregate"
	"github.com/nmep/dashboard/internal/domain/reference"
	"github.com/nmep/dashboard/internal/domain/snapshot"
	"github.com/nmep/dashboard/internal/platform/reporting"
)

// Datasets returns the exportable tables of a snapshot.
func Datasets(snap *snapshot.Snapshot) []reporting.Dataset {
	return []reporting.Dataset{
		{ID: "cases", Name: "Case line list", Description: "Individual malaria cases from the last 90 days", Sheet: func() reporting.Sheet { return caseSheet(snap) }},
		{ID: "facilities", Name: "Facility reports", Description: "Monthly HMIS submissions per facility", Sheet: func() reporting.Sheet { return facilitySheet(snap) }},
		{ID: "completeness", Name: "Reporting completeness", Description: "Completeness and timeliness per state", Sheet: func() reporting.Sheet { return completenessSheet(snap) }},
		{ID: "ppmv", Name: "PPMV registry", Description: "Patent and proprietary medicine vendors", Sheet: func() reporting.Sheet { return ppmvSheet(snap) }},
		{ID: "burden", Name: "State burden", Description: "Estimated annual cases, deaths and incidence per state", Sheet: func() reporting.Sheet { return burdenSheet(snap) }},
		{ID: "outliers", Name: "Data quality outliers", Description: "Reported versus expected monthly cases per LGA", Sheet: func() reporting.Sheet { return outlierSheet(snap) }},
		{ID: "alerts", Name: "Outbreak alerts", Description: "States above the epidemic threshold this week", Sheet: func() reporting.Sheet { return alertSheet(snap) }},
		{ID: "budget", Name: "Budget lines", Description: "Allocation, disbursement and expenditure per funder and intervention", Sheet: func() reporting.Sheet { return budgetSheet(snap) }},
		{ID: "budget-summary", Name: "Funding summary", Description: "Totals and absorption per funding source", Sheet: func() reporting.Sheet { return fundingSheet(snap) }},
		{ID: "countries", Name: "Endemic countries", Description: "Headline indicators for endemic countries", Sheet: countrySheet},
	}
}

// Catalogue indexes Datasets.
func Catalogue(snap *snapshot.Snapshot) *reporting.Catalogue {
	return reporting.NewCatalogue(Datasets(snap)...)
}

func caseSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Cases",
		Columns: []reporting.Column{
			{Key: "id", Header: "Case ID", Width: 14},
			{Key: "date", Header: "Date", Width: 12},
			{Key: "state", Header: "State"},
			{Key: "lga", Header: "LGA", Width: 18},
			{Key: "age", Header: "Age"},
			{Key: "sex", Header: "Sex"},
			{Key: "pregnant", Header: "Pregnant"},
			{Key: "diagnosis", Header: "Diagnosis", Width: 12},
			{Key: "species", Header: "Species", Width: 14},
			{Key: "severity", Header: "Severity", Width: 14},
			{Key: "treatment", Header: "Treatment", Width: 28},
			{Key: "outcome", Header: "Outcome"},
		},
	}
	for _, r := range snap.Cases {
		s.Rows = append(s.Rows, []any{r.ID, r.Date, r.StateCode, r.LGA, r.Age, r.Sex, r.Pregnant, r.Diagnosis, r.Species, r.Severity, r.Treatment, r.Outcome})
	}
	return s
}

func facilitySheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Facilities",
		Columns: []reporting.Column{
			{Key: "facility_id", Header: "Facility ID", Width: 14},
			{Key: "facility_name", Header: "Facility", Width: 36},
			{Key: "facility_type", Header: "Type", Width: 22},
			{Key: "state", Header: "State"},
			{Key: "lga", Header: "LGA", Width: 18},
			{Key: "period", Header: "Period"},
			{Key: "reported", Header: "Reported"},
			{Key: "on_time", Header: "On time"},
			{Key: "tested", Header: "Tested"},
			{Key: "confirmed", Header: "Confirmed"},
		},
	}
	for _, r := range snap.Facilities {
		s.Rows = append(s.Rows, []any{r.FacilityID, r.FacilityName, r.FacilityType, r.StateCode, r.LGA, r.Period, r.Reported, r.OnTime, r.Tested, r.Confirmed})
	}
	return s
}

func completenessSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Completeness",
		Columns: []reporting.Column{
			{Key: "state", Header: "State"},
			{Key: "facilities", Header: "Facilities"},
			{Key: "reported", Header: "Reported"},
			{Key: "on_time", Header: "On time"},
			{Key: "completeness", Header: "Completeness %", Width: 16},
			{Key: "timeliness", Header: "Timeliness %", Width: 14},
		},
	}
	for _, r := range aggregate.ReportingCompleteness(snap.Facilities) {
		s.Rows = append(s.Rows, []any{r.StateCode, r.Facilities, r.Reported, r.OnTime, r.Completeness, r.Timeliness})
	}
	return s
}

func ppmvSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "PPMV",
		Columns: []reporting.Column{
			{Key: "vendor_id", Header: "Vendor ID", Width: 14},
			{Key: "state", Header: "State"},
			{Key: "lga", Header: "LGA", Width: 18},
			{Key: "registered", Header: "Registered"},
			{Key: "rdt_trained", Header: "RDT trained"},
			{Key: "tested", Header: "Tested"},
			{Key: "positive", Header: "Positive"},
			{Key: "act_in_stock", Header: "ACT in stock"},
		},
	}
	for _, r := range snap.PPMVs {
		s.Rows = append(s.Rows, []any{r.VendorID, r.StateCode, r.LGA, r.Registered, r.RDTTrained, r.Tested, r.Positive, r.ACTInStock})
	}
	return s
}

func burdenSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Burden",
		Columns: []reporting.Column{
			{Key: "state", Header: "State", Width: 16},
			{Key: "zone", Header: "Zone"},
			{Key: "population", Header: "Population", Width: 14},
			{Key: "cases", Header: "Estimated cases", Width: 16},
			{Key: "deaths", Header: "Estimated deaths", Width: 16},
			{Key: "incidence", Header: "Incidence per 1,000", Width: 18},
			{Key: "band", Header: "Band", Width: 12},
		},
	}
	for _, r := range burdenRows(snap.Burden) {
		s.Rows = append(s.Rows, []any{r.StateName, r.Zone, r.Population, r.Cases, r.Deaths, r.Incidence, r.Band.Label})
	}
	return s
}

func outlierSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Outliers",
		Columns: []reporting.Column{
			{Key: "state", Header: "State"},
			{Key: "lga", Header: "LGA", Width: 18},
			{Key: "expected", Header: "Expected"},
			{Key: "reported", Header: "Reported"},
			{Key: "deviation", Header: "Deviation"},
			{Key: "flagged", Header: "Flagged"},
		},
	}
	for _, r := range snap.Outliers {
		s.Rows = append(s.Rows, []any{r.StateCode, r.LGA, r.Expected, r.Reported, r.Deviation, r.Flagged})
	}
	return s
}

func alertSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Alerts",
		Columns: []reporting.Column{
			{Key: "state", Header: "State", Width: 16},
			{Key: "week", Header: "Week"},
			{Key: "baseline", Header: "Baseline"},
			{Key: "observed", Header: "Observed"},
			{Key: "threshold", Header: "Threshold"},
			{Key: "ratio", Header: "Ratio"},
			{Key: "severity", Header: "Severity"},
		},
	}
	for _, r := range snap.Alerts {
		s.Rows = append(s.Rows, []any{r.StateName, r.Week, r.Baseline, r.Observed, r.Threshold, r.Ratio, r.Severity})
	}
	return s
}

func budgetSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Budget",
		Columns: []reporting.Column{
			{Key: "source", Header: "Funding source", Width: 32},
			{Key: "intervention", Header: "Intervention", Width: 32},
			{Key: "allocated", Header: "Allocated (NGN)", Width: 18},
			{Key: "disbursed", Header: "Disbursed (NGN)", Width: 18},
			{Key: "expended", Header: "Expended (NGN)", Width: 18},
		},
	}
	for _, l := range snap.Budget {
		s.Rows = append(s.Rows, []any{l.Source, l.Intervention, l.Allocated, l.Disbursed, l.Expended})
	}
	return s
}

func fundingSheet(snap *snapshot.Snapshot) reporting.Sheet {
	s := reporting.Sheet{
		Name: "Funding",
		Columns: []reporting.Column{
			{Key: "source", Header: "Funding source", Width: 32},
			{Key: "allocated", Header: "Allocated (NGN)", Width: 18},
			{Key: "disbursed", Header: "Disbursed (NGN)", Width: 18},
			{Key: "expended", Header: "Expended (NGN)", Width: 18},
			{Key: "absorption", Header: "Absorption %", Width: 14},
		},
	}
	for _, f := range aggregate.BudgetSummary(snap.Budget) {
		s.Rows = append(s.Rows, []any{f.Source, f.Allocated, f.Disbursed, f.Expended, f.Absorption})
	}
	return s
}

func countrySheet() reporting.Sheet {
	s := reporting.Sheet{
		Name: "Countries",
		Columns: []reporting.Column{
			{Key: "code", Header: "Code"},
			{Key: "name", Header: "Country", Width: 32},
			{Key: "region", Header: "Region", Width: 16},
			{Key: "population", Header: "Population", Width: 14},
			{Key: "incidence", Header: "Incidence per 1,000", Width: 18},
			{Key: "mortality", Header: "Mortality per 100,000", Width: 20},
			{Key: "itn_coverage", Header: "ITN coverage %", Width: 14},
		},
	}
	for _, c := range reference.Countries().All() {
		s.Rows = append(s.Rows, []any{c.Code, c.Name, c.Region, c.Population, c.Incidence, c.Mortality, c.ITNCoverage})
	}
	return s
}
