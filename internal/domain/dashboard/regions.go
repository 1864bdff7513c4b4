package dashboard

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/domain/reference"
)

func (h *Handler) ListStates(c echo.Context) error {
	states := reference.States()
	if zone := upperParam(c, "zone"); zone != "" {
		if _, ok := reference.ZoneMultiplier(zone); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown zone: "+zone)
		}
		return c.JSON(http.StatusOK, states.ByGroup(zone))
	}
	return c.JSON(http.StatusOK, states.All())
}

func (h *Handler) GetState(c echo.Context) error {
	st, ok := reference.States().Lookup(strings.ToUpper(c.Param("code")))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "state not found")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListCountries(c echo.Context) error {
	countries := reference.Countries()
	if region := strings.TrimSpace(c.QueryParam("region")); region != "" {
		return c.JSON(http.StatusOK, countries.ByGroup(region))
	}
	return c.JSON(http.StatusOK, countries.All())
}

func (h *Handler) TopCountries(c echo.Context) error {
	name := c.QueryParam("metric")
	if name == "" {
		name = reference.MetricIncidence
	}
	metric, ok := reference.CountryMetric(name)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown metric: "+name)
	}
	n, err := intParam(c, "n", 5)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reference.Countries().Top(n, metric))
}
