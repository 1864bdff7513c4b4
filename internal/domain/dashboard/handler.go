// Package dashboard serves the snapshot datasets as chart-ready JSON.
package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/domain/aggregate"
	"github.com/nmep/dashboard/internal/domain/snapshot"
	"github.com/nmep/dashboard/internal/platform/middleware"
	"github.com/nmep/dashboard/pkg/pagination"
)

// cacheMaxAge is how long clients may cache snapshot responses. The snapshot
// never changes during the life of the process.
const cacheMaxAge = 300

type Handler struct {
	snap *snapshot.Snapshot
}

func NewHandler(snap *snapshot.Snapshot) *Handler {
	return &Handler{snap: snap}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", middleware.ETag(cacheMaxAge))

	g.GET("/regions/states", h.ListStates)
	g.GET("/regions/states/:code", h.GetState)
	g.GET("/regions/countries", h.ListCountries)
	g.GET("/regions/countries/top", h.TopCountries)

	g.GET("/indicators/monthly", h.MonthlyIncidence)
	g.GET("/indicators/weekly", h.WeeklyTesting)
	api.GET("/indicators/summary", h.IndicatorSummary)

	g.GET("/burden", h.ListBurden)

	g.GET("/cases", h.ListCases)
	g.GET("/cases/breakdown", h.CaseBreakdown)
	g.GET("/facilities", h.ListFacilities)
	g.GET("/facilities/completeness", h.FacilityCompleteness)
	g.GET("/ppmv", h.ListPPMVs)
	g.GET("/ppmv/summary", h.PPMVSummary)

	g.GET("/outliers", h.ListOutliers)
	g.GET("/alerts", h.ListAlerts)

	g.GET("/finance/budget", h.ListBudget)
	g.GET("/finance/summary", h.BudgetSummary)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// sorter maps a ?sort field to an ascending comparison.
type sorter[T any] map[string]func(a, b T) bool

// page sorts, slices and wraps items. def is the field used when no sort is
// requested; a leading "-" on def means descending.
func page[T any](c echo.Context, items []T, sorts sorter[T], def string) (*pagination.Response, error) {
	p := pagination.FromContext(c)
	if p.Sort == "" && def != "" {
		p.Sort, p.Desc = strings.TrimPrefix(def, "-"), strings.HasPrefix(def, "-")
	}
	var less func(a, b T) bool
	if p.Sort != "" {
		asc, ok := sorts[p.Sort]
		if !ok {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "unsupported sort field: "+p.Sort)
		}
		less = asc
		if p.Desc {
			less = func(a, b T) bool { return asc(b, a) }
		}
	}
	rows := aggregate.Paginate(items, less, p.Offset, p.Limit)
	return p.Page(rows, len(items), c.Request().URL.Path), nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// boolParam parses an optional boolean query parameter.
func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+raw)
	}
	return &v, nil
}

// intParam parses an optional positive integer, returning def when absent.
func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return v, nil
}

func upperParam(c echo.Context, name string) string {
	return strings.ToUpper(strings.TrimSpace(c.QueryParam(name)))
}
