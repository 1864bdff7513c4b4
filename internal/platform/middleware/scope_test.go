package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func knownCountries(code string) bool { return code == "NG" || code == "GH" }

func runScope(t *testing.T, req *http.Request, setup func(c echo.Context)) (string, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	if setup != nil {
		setup(c)
	}
	var got string
	err := CountryScope("NG", knownCountries)(func(c echo.Context) error {
		got = Country(c)
		if CountryFromContext(c.Request().Context()) != got {
			t.Error("context and echo country disagree")
		}
		return nil
	})(c)
	return got, err
}

func TestCountryScope_Default(t *testing.T) {
	got, err := runScope(t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if err != nil || got != "NG" {
		t.Errorf("expected NG, got %q (%v)", got, err)
	}
}

func TestCountryScope_FromQueryLowercase(t *testing.T) {
	got, err := runScope(t, httptest.NewRequest(http.MethodGet, "/?country=gh", nil), nil)
	if err != nil || got != "GH" {
		t.Errorf("expected GH, got %q (%v)", got, err)
	}
}

func TestCountryScope_HeaderBeatsQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?country=NG", nil)
	req.Header.Set("X-Country", "GH")
	got, _ := runScope(t, req, nil)
	if got != "GH" {
		t.Errorf("expected GH, got %q", got)
	}
}

func TestCountryScope_ClaimWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?country=NG", nil)
	got, _ := runScope(t, req, func(c echo.Context) { c.Set("jwt_country", "GH") })
	if got != "GH" {
		t.Errorf("expected GH from claim, got %q", got)
	}
}

func TestCountryScope_Invalid(t *testing.T) {
	_, err := runScope(t, httptest.NewRequest(http.MethodGet, "/?country=N1G", nil), nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestCountryScope_Unknown(t *testing.T) {
	_, err := runScope(t, httptest.NewRequest(http.MethodGet, "/?country=ZZ", nil), nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
