package middleware

import (
	"github.com/labstack/echo/v4"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func jsonError(c echo.Context, status int, msg string) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(status, ErrorBody{Error: msg})
}

// HTTPErrorHandler renders errors as {"error": "..."} so every failure the
// client sees has the same shape.
func HTTPErrorHandler(err error, c echo.Context) {
	status, msg := 500, "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else if he.Internal != nil {
			msg = he.Internal.Error()
		}
	}
	if c.Request().Method == "HEAD" {
		_ = c.NoContent(status)
		return
	}
	_ = jsonError(c, status, msg)
}
