package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/ics"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// CalendarHandler previews external feeds, syncs them into listings and
// exports listings as iCalendar.
type CalendarHandler struct {
	svc *service.CalendarService
}

func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	if svc == nil {
		panic("nil CalendarService")
	}
	return &CalendarHandler{svc: svc}
}

// Preview fetches ?url= and returns its events without storing them.
func (h *CalendarHandler) Preview(c echo.Context) error {
	events, err := h.svc.Preview(c.Request().Context(), c.QueryParam("url"))
	if err != nil {
		return fail(c, err, "fetch calendar")
	}
	return c.JSON(http.StatusOK, events)
}

// PreviewAirbnb is Preview for an Airbnb calendar id and secret.
func (h *CalendarHandler) PreviewAirbnb(c echo.Context) error {
	events, err := h.svc.PreviewAirbnb(c.Request().Context(), c.Param("calendarId"), c.Param("secretToken"))
	if err != nil {
		return fail(c, err, "fetch calendar")
	}
	return c.JSON(http.StatusOK, events)
}

// Sync imports the listing's configured feed now.
func (h *CalendarHandler) Sync(c echo.Context) error {
	res, err := h.svc.Sync(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err, "sync calendar")
	}
	return c.JSON(http.StatusOK, res)
}

// SyncAll runs the feed sweep the scheduler runs, on demand.
func (h *CalendarHandler) SyncAll(c echo.Context) error {
	sum, err := h.svc.SyncAll(c.Request().Context())
	if err != nil {
		return fail(c, err, "sync calendars")
	}
	return c.JSON(http.StatusOK, sum)
}

// Export always answers with a parseable calendar: an unknown listing is a
// 404 and any other failure a 200, both with an empty VCALENDAR.
func (h *CalendarHandler) Export(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := reqCtx(c)
	defer cancel()

	body, err := h.svc.Export(ctx, id)
	status := http.StatusOK
	switch {
	case errors.Is(err, service.ErrNotFound):
		body, status = ics.EmptyCalendar, http.StatusNotFound
	case err != nil:
		applog.Error("ics export failed", err, "accommodation", id)
		body = ics.EmptyCalendar
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="calendar.ics"`)
	return c.Blob(status, "text/calendar; charset=utf-8", []byte(body))
}
