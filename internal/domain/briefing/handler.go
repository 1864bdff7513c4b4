package briefing

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/domain/action"
	"github.com/nmep/dashboard/internal/platform/auth"
	"github.com/nmep/dashboard/internal/platform/gateway"
	"github.com/nmep/dashboard/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/briefings/:id/audio", h.GetAudio)

	write := api.Group("", auth.RequireRole(auth.RoleProgramOfficer))
	write.POST("/briefings", h.CreateBriefing)
	write.DELETE("/briefings/:id", h.RevokeBriefing)
}

func httpError(err error) error {
	var se *gateway.StatusError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "briefing not found or expired")
	case errors.Is(err, ErrGatewayDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrContextUnavailable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, action.MsgRateLimited)
	case errors.Is(err, gateway.ErrQuotaExhausted):
		return echo.NewHTTPError(http.StatusPaymentRequired, action.MsgQuota)
	case errors.As(err, &se) && se.Message != "":
		return echo.NewHTTPError(http.StatusBadGateway, se.Message).SetInternal(err)
	case errors.Is(err, ErrSynthesisFailed):
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to generate audio briefing.").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func (h *Handler) CreateBriefing(c echo.Context) error {
	cc := middleware.Country(c)
	if cc == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "country is required")
	}
	b, err := h.svc.Create(c.Request().Context(), cc)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetAudio(c echo.Context) error {
	rc, meta, err := h.svc.Audio(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	defer rc.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(meta.Size, 10))
	res.Header().Set("Cache-Control", "private, no-store")
	res.Header().Set(echo.HeaderContentType, meta.ContentType)
	res.WriteHeader(http.StatusOK)
	_, err = io.Copy(res, rc)
	return err
}

func (h *Handler) RevokeBriefing(c echo.Context) error {
	if err := h.svc.Revoke(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
