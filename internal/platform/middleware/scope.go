package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

type countryKey struct{}

var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// CountryScope resolves the country a request is scoped to, in order: the
// token's country claim, the X-Country header, the ?country= query
// parameter, then defaultCountry. known rejects codes missing from the
// reference table.
func CountryScope(defaultCountry string, known func(code string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			code := strings.ToUpper(extractCountry(c, defaultCountry))
			if !countryPattern.MatchString(code) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid country code")
			}
			if known != nil && !known(code) {
				return echo.NewHTTPError(http.StatusNotFound, "unknown country: "+code)
			}

			c.Set("country", code)
			c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), countryKey{}, code)))
			return next(c)
		}
	}
}

func extractCountry(c echo.Context, defaultCountry string) string {
	if cc, ok := c.Get("jwt_country").(string); ok && cc != "" {
		return cc
	}
	if cc := c.Request().Header.Get("X-Country"); cc != "" {
		return cc
	}
	if cc := c.QueryParam("country"); cc != "" {
		return cc
	}
	return defaultCountry
}

// CountryFromContext returns the scoped country code, or "" outside
// CountryScope.
func CountryFromContext(ctx context.Context) string {
	cc, _ := ctx.Value(countryKey{}).(string)
	return cc
}

// Country returns the scoped country of an echo request.
func Country(c echo.Context) string {
	cc, _ := c.Get("country").(string)
	return cc
}
