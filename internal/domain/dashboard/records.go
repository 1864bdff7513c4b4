package dashboard

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/domain/aggregate"
	"github.com/nmep/dashboard/internal/domain/reference"
	"github.com/nmep/dashboard/internal/domain/synthetic"
)

// stateFilter validates ?state against the reference table.
func stateFilter(c echo.Context) (string, error) {
	code := upperParam(c, "state")
	if code != "" && !reference.States().Has(code) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unknown state: "+code)
	}
	return code, nil
}

// -----------------------------------------------------------------------------
// Cases
// -----------------------------------------------------------------------------

var caseSorts = sorter[synthetic.CaseRecord]{
	"date":  func(a, b synthetic.CaseRecord) bool { return a.Date.Before(b.Date) },
	"age":   func(a, b synthetic.CaseRecord) bool { return a.Age < b.Age },
	"state": func(a, b synthetic.CaseRecord) bool { return a.StateCode < b.StateCode },
	"id":    func(a, b synthetic.CaseRecord) bool { return a.ID < b.ID },
}

// caseFields are the attributes a case breakdown can group by.
var caseFields = map[string]func(synthetic.CaseRecord) string{
	"state":     func(r synthetic.CaseRecord) string { return r.StateCode },
	"sex":       func(r synthetic.CaseRecord) string { return r.Sex },
	"diagnosis": func(r synthetic.CaseRecord) string { return r.Diagnosis },
	"species":   func(r synthetic.CaseRecord) string { return r.Species },
	"severity":  func(r synthetic.CaseRecord) string { return r.Severity },
	"treatment": func(r synthetic.CaseRecord) string { return r.Treatment },
	"outcome":   func(r synthetic.CaseRecord) string { return r.Outcome },
	"age_group": func(r synthetic.CaseRecord) string {
		if r.Age < 5 {
			return "under_5"
		}
		return "5_and_over"
	},
	"pregnant": func(r synthetic.CaseRecord) string { return strconv.FormatBool(r.Pregnant) },
}

func (h *Handler) cases(c echo.Context) ([]synthetic.CaseRecord, error) {
	state, err := stateFilter(c)
	if err != nil {
		return nil, err
	}
	if state == "" {
		return h.snap.Cases, nil
	}
	return filter(h.snap.Cases, func(r synthetic.CaseRecord) bool { return r.StateCode == state }), nil
}

func (h *Handler) ListCases(c echo.Context) error {
	rows, err := h.cases(c)
	if err != nil {
		return err
	}
	resp, err := page(c, rows, caseSorts, "-date")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// BreakdownResponse is the share of cases per value of one attribute.
type BreakdownResponse struct {
	Field  string            `json:"field"`
	Total  int               `json:"total"`
	Shares []aggregate.Share `json:"shares"`
}

func (h *Handler) CaseBreakdown(c echo.Context) error {
	field := c.QueryParam("field")
	if field == "" {
		field = "diagnosis"
	}
	key, ok := caseFields[field]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported breakdown field: "+field)
	}
	rows, err := h.cases(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BreakdownResponse{
		Field:  field,
		Total:  len(rows),
		Shares: aggregate.Shares(aggregate.GroupCount(rows, key)),
	})
}

// -----------------------------------------------------------------------------
// Facilities
// -----------------------------------------------------------------------------

var facilitySorts = sorter[synthetic.FacilityReport]{
	"name":      func(a, b synthetic.FacilityReport) bool { return a.FacilityName < b.FacilityName },
	"state":     func(a, b synthetic.FacilityReport) bool { return a.StateCode < b.StateCode },
	"tested":    func(a, b synthetic.FacilityReport) bool { return a.Tested < b.Tested },
	"confirmed": func(a, b synthetic.FacilityReport) bool { return a.Confirmed < b.Confirmed },
}

func (h *Handler) ListFacilities(c echo.Context) error {
	state, err := stateFilter(c)
	if err != nil {
		return err
	}
	reported, err := boolParam(c, "reported")
	if err != nil {
		return err
	}
	rows := filter(h.snap.Facilities, func(r synthetic.FacilityReport) bool {
		if state != "" && r.StateCode != state {
			return false
		}
		return reported == nil || r.Reported == *reported
	})
	resp, err := page(c, rows, facilitySorts, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) FacilityCompleteness(c echo.Context) error {
	return c.JSON(http.StatusOK, aggregate.ReportingCompleteness(h.snap.Facilities))
}

// -----------------------------------------------------------------------------
// PPMV registry
// -----------------------------------------------------------------------------

var ppmvSorts = sorter[synthetic.PPMVRecord]{
	"state":    func(a, b synthetic.PPMVRecord) bool { return a.StateCode < b.StateCode },
	"tested":   func(a, b synthetic.PPMVRecord) bool { return a.Tested < b.Tested },
	"positive": func(a, b synthetic.PPMVRecord) bool { return a.Positive < b.Positive },
}

func (h *Handler) ListPPMVs(c echo.Context) error {
	state, err := stateFilter(c)
	if err != nil {
		return err
	}
	rows := h.snap.PPMVs
	if state != "" {
		rows = filter(rows, func(r synthetic.PPMVRecord) bool { return r.StateCode == state })
	}
	resp, err := page(c, rows, ppmvSorts, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// PPMVSummary is the headline picture of the vendor registry.
type PPMVSummary struct {
	Vendors    int     `json:"vendors"`
	Registered float64 `json:"registered_pct"`
	RDTTrained float64 `json:"rdt_trained_pct"`
	ACTInStock float64 `json:"act_in_stock_pct"`
	Tested     int     `json:"tested"`
	Positive   int     `json:"positive"`
	Positivity float64 `json:"positivity_pct"`
}

func summarizePPMVs(rows []synthetic.PPMVRecord) PPMVSummary {
	var s PPMVSummary
	var registered, trained, stocked int
	for _, r := range rows {
		if r.Registered {
			registered++
		}
		if r.RDTTrained {
			trained++
		}
		if r.ACTInStock {
			stocked++
		}
		s.Tested += r.Tested
		s.Positive += r.Positive
	}
	n := float64(len(rows))
	s.Vendors = len(rows)
	s.Registered = aggregate.Percent(float64(registered), n)
	s.RDTTrained = aggregate.Percent(float64(trained), n)
	s.ACTInStock = aggregate.Percent(float64(stocked), n)
	s.Positivity = aggregate.Percent(float64(s.Positive), float64(s.Tested))
	return s
}

func (h *Handler) PPMVSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, summarizePPMVs(h.snap.PPMVs))
}

// -----------------------------------------------------------------------------
// Data quality
// -----------------------------------------------------------------------------

func (h *Handler) ListOutliers(c echo.Context) error {
	state, err := stateFilter(c)
	if err != nil {
		return err
	}
	flagged, err := boolParam(c, "flagged")
	if err != nil {
		return err
	}
	rows := filter(h.snap.Outliers, func(o synthetic.OutlierResult) bool {
		if state != "" && o.StateCode != state {
			return false
		}
		return flagged == nil || o.Flagged == *flagged
	})
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	severity := c.QueryParam("severity")
	switch severity {
	case "", synthetic.SeverityModerate, synthetic.SeverityHigh:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown severity: "+severity)
	}
	rows := h.snap.Alerts
	if severity != "" {
		rows = filter(rows, func(a synthetic.OutbreakAlert) bool { return a.Severity == severity })
	}
	return c.JSON(http.StatusOK, rows)
}

// -----------------------------------------------------------------------------
// Finance
// -----------------------------------------------------------------------------

func (h *Handler) ListBudget(c echo.Context) error {
	source := c.QueryParam("source")
	rows := h.snap.Budget
	if source != "" {
		rows = filter(rows, func(l synthetic.BudgetLine) bool { return l.Source == source })
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) BudgetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, aggregate.BudgetSummary(h.snap.Budget))
}
