package dashboard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/domain/aggregate"
	"github.com/nmep/dashboard/internal/domain/snapshot"
	"github.com/nmep/dashboard/internal/domain/synthetic"
	"github.com/nmep/dashboard/internal/platform/middleware"
)

func (h *Handler) MonthlyIncidence(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snap.Monthly)
}

func (h *Handler) WeeklyTesting(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snap.Weekly)
}

// SummaryResponse is the plaintext indicator context for a country.
type SummaryResponse struct {
	CountryCode string `json:"country_code"`
	Seed        int64  `json:"seed"`
	Summary     string `json:"summary"`
}

func (h *Handler) IndicatorSummary(c echo.Context) error {
	cc := middleware.Country(c)
	text, err := h.snap.Summary(cc)
	if errors.Is(err, snapshot.ErrUnknownCountry) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SummaryResponse{CountryCode: cc, Seed: h.snap.Seed, Summary: text})
}

// BurdenRow is a state's burden estimate with its map color band.
type BurdenRow struct {
	synthetic.BurdenEstimate
	Band aggregate.Band `json:"band"`
}

var burdenSorts = sorter[BurdenRow]{
	"cases":      func(a, b BurdenRow) bool { return a.Cases < b.Cases },
	"deaths":     func(a, b BurdenRow) bool { return a.Deaths < b.Deaths },
	"incidence":  func(a, b BurdenRow) bool { return a.Incidence < b.Incidence },
	"population": func(a, b BurdenRow) bool { return a.Population < b.Population },
	"name":       func(a, b BurdenRow) bool { return a.StateName < b.StateName },
}

func burdenRows(estimates []synthetic.BurdenEstimate) []BurdenRow {
	rows := make([]BurdenRow, len(estimates))
	for i, e := range estimates {
		rows[i] = BurdenRow{BurdenEstimate: e, Band: aggregate.ClassifyBurden(e.Incidence)}
	}
	return rows
}

// ListBurden returns every state's burden, sorted by ?sort (default -cases).
// ?top=N returns only the N highest-case states.
func (h *Handler) ListBurden(c echo.Context) error {
	rows := burdenRows(h.snap.Burden)
	if zone := upperParam(c, "zone"); zone != "" {
		rows = filter(rows, func(r BurdenRow) bool { return r.Zone == zone })
	}
	if c.QueryParam("top") != "" {
		n, err := intParam(c, "top", 0)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, aggregate.TopN(rows, n, func(r BurdenRow) float64 { return r.Cases }))
	}
	resp, err := page(c, rows, burdenSorts, "-cases")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
