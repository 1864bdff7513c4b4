package action

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nmep/dashboard/internal/platform/auth"
	"github.com/nmep/dashboard/internal/platform/middleware"
)

type Handler struct {
	svc      *Service
	trackers *Trackers
}

// NewHandler creates the action handler. trackers may be nil, in which case
// GET /actions/tracker is not served.
func NewHandler(svc *Service, trackers *Trackers) *Handler {
	return &Handler{svc: svc, trackers: trackers}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/actions", h.ListActions)
	if h.trackers != nil {
		api.GET("/actions/tracker", h.TrackerState)
	}

	write := api.Group("", auth.RequireRole(auth.RoleProgramOfficer))
	write.POST("/actions/generate", h.GenerateActions)
	write.POST("/actions/:id/advance", h.AdvanceAction)
	write.POST("/actions/:id/off-track", h.MarkOffTrack)
	write.PATCH("/actions/:id", h.UpdateNotes)
	write.DELETE("/actions/:id", h.DeleteAction)
	write.DELETE("/actions", h.ClearActions)
}

// ListResponse is the body of GET /actions.
type ListResponse struct {
	CountryCode string         `json:"country_code"`
	Items       []*Item        `json:"items"`
	Counts      map[Status]int `json:"counts"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func country(c echo.Context) (string, error) {
	cc := middleware.Country(c)
	if cc == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "country is required")
	}
	return cc, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps service errors onto status codes and user-facing messages.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "action item not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, MsgRateLimited)
	case errors.Is(err, ErrQuotaExhausted):
		return echo.NewHTTPError(http.StatusPaymentRequired, MsgQuota)
	case errors.Is(err, ErrGenerateFailed), errors.Is(err, ErrNothingParsed):
		return echo.NewHTTPError(http.StatusBadGateway, MsgGenerateFail).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func (h *Handler) ListActions(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), cc)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ListResponse{CountryCode: cc, Items: items, Counts: CountByStatus(items)})
}

// TrackerState returns the cached list with its loading and generating
// flags.
func (h *Handler) TrackerState(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.trackers.For(cc).State())
}

func (h *Handler) GenerateActions(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Generate(c.Request().Context(), cc)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, items)
}

func (h *Handler) AdvanceAction(c echo.Context) error {
	return h.transition(c, h.svc.Advance)
}

func (h *Handler) MarkOffTrack(c echo.Context) error {
	return h.transition(c, h.svc.MarkOffTrack)
}

func (h *Handler) transition(c echo.Context, fn func(ctx context.Context, cc string, id uuid.UUID) (*Item, error)) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	it, err := fn(c.Request().Context(), cc, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	it, err := h.svc.UpdateNotes(c.Request().Context(), cc, id, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) DeleteAction(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), cc, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearActions(c echo.Context) error {
	cc, err := country(c)
	if err != nil {
		return err
	}
	n, err := h.svc.ClearAll(c.Request().Context(), cc)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": n})
}
